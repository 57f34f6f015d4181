// Package config loads settings from an optional YAML file, .env and the
// process environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string         `yaml:"port" validate:"required"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Stripe   StripeConfig   `yaml:"stripe"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type DatabaseConfig struct {
	Driver        string `yaml:"driver" validate:"oneof=mongo postgres memory"`
	MongoURI      string `yaml:"mongo_uri" validate:"required_if=Driver mongo"`
	MongoDatabase string `yaml:"mongo_database" validate:"required_if=Driver mongo"`
	PostgresDSN   string `yaml:"postgres_dsn" validate:"required_if=Driver postgres"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" validate:"required"`
	TokenTTL  time.Duration `yaml:"token_ttl" validate:"gt=0"`
}

type StorageConfig struct {
	Driver              string `yaml:"driver" validate:"oneof=local cloudinary"`
	UploadPath          string `yaml:"upload_path"`
	MaxUpload           int64  `yaml:"max_upload" validate:"gt=0"`
	CloudinaryCloudName string `yaml:"cloudinary_cloud_name" validate:"required_if=Driver cloudinary"`
	CloudinaryAPIKey    string `yaml:"cloudinary_api_key" validate:"required_if=Driver cloudinary"`
	CloudinaryAPISecret string `yaml:"cloudinary_api_secret" validate:"required_if=Driver cloudinary"`
	CloudinaryFolder    string `yaml:"cloudinary_folder"`
}

// StripeConfig is optional; payments are disabled without a secret key.
type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret" validate:"required_with=SecretKey"`
}

type HTTPConfig struct {
	CORSOrigins    []string `yaml:"cors_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int      `yaml:"rate_limit_burst" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

func defaults() *Config {
	return &Config{
		Port: "5000",
		Database: DatabaseConfig{
			Driver:        "mongo",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "momentcraft",
		},
		Auth: AuthConfig{TokenTTL: 24 * time.Hour},
		Storage: StorageConfig{
			Driver:           "local",
			UploadPath:       "./public/uploads",
			MaxUpload:        1000000,
			CloudinaryFolder: "momentcraft/vendors",
		},
		HTTP:    HTTPConfig{CORSOrigins: []string{"*"}, RateLimitRPS: 10, RateLimitBurst: 20},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("DB_DRIVER", &c.Database.Driver)
	str("MONGODB_URI", &c.Database.MongoURI)
	str("MONGODB_DATABASE", &c.Database.MongoDatabase)
	str("POSTGRES_DSN", &c.Database.PostgresDSN)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("FILE_UPLOAD_PATH", &c.Storage.UploadPath)
	str("CLOUDINARY_CLOUD_NAME", &c.Storage.CloudinaryCloudName)
	str("CLOUDINARY_API_KEY", &c.Storage.CloudinaryAPIKey)
	str("CLOUDINARY_API_SECRET", &c.Storage.CloudinaryAPISecret)
	str("CLOUDINARY_FOLDER", &c.Storage.CloudinaryFolder)
	str("STRIPE_SECRET_KEY", &c.Stripe.SecretKey)
	str("STRIPE_WEBHOOK_SECRET", &c.Stripe.WebhookSecret)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)

	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.HTTP.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.HTTP.CORSOrigins = append(c.HTTP.CORSOrigins, o)
			}
		}
	}
	if v, ok := lookup("JWT_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	if v, ok := lookup("MAX_FILE_UPLOAD"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_FILE_UPLOAD: %w", err)
		}
		c.Storage.MaxUpload = n
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.HTTP.RateLimitRPS = f
	}
	if v, ok := lookup("RATE_LIMIT_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.HTTP.RateLimitBurst = n
	}
	return nil
}

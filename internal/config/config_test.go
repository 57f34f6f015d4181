package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := defaults()
	err := cfg.applyEnv(env(map[string]string{
		"PORT":             "8080",
		"DB_DRIVER":        "postgres",
		"POSTGRES_DSN":     "postgres://localhost/momentcraft",
		"JWT_SECRET":       "s3cret",
		"JWT_TTL":          "2h",
		"MAX_FILE_UPLOAD":  "2048",
		"CORS_ORIGINS":     "https://a.example, https://b.example,",
		"RATE_LIMIT_RPS":   "2.5",
		"RATE_LIMIT_BURST": "5",
		"LOG_FORMAT":       "json",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.EqualValues(t, 2048, cfg.Storage.MaxUpload)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 2.5, cfg.HTTP.RateLimitRPS)
	assert.Equal(t, 5, cfg.HTTP.RateLimitBurst)
	assert.Equal(t, "json", cfg.Logging.Format)
	// untouched keys keep their defaults
	assert.Equal(t, "local", cfg.Storage.Driver)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	for _, key := range []string{"JWT_TTL", "MAX_FILE_UPLOAD", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		err := defaults().applyEnv(env(map[string]string{key: "lots"}))
		assert.ErrorContains(t, err, key)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
database:
  driver: memory
auth:
  jwt_secret: ${TEST_MC_SECRET}
  token_ttl: 1h
logging:
  level: debug
  format: text
`), 0o600))

	t.Chdir(dir)
	t.Setenv("TEST_MC_SECRET", "from-env-expansion")
	t.Setenv("PORT", "7100")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "from-env-expansion", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadValidates(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "memory")
	_, err := Load("")
	assert.ErrorContains(t, err, "JWTSecret")

	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DB_DRIVER", "sqlite")
	_, err = Load("")
	assert.ErrorContains(t, err, "Driver")

	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("STORAGE_DRIVER", "cloudinary")
	_, err = Load("")
	assert.ErrorContains(t, err, "CloudinaryCloudName")
}

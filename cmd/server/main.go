package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/shreyas2228/momentcraftres/internal/adapters/payments"
	"github.com/shreyas2228/momentcraftres/internal/adapters/repository/memory"
	"github.com/shreyas2228/momentcraftres/internal/adapters/repository/mongodb"
	"github.com/shreyas2228/momentcraftres/internal/adapters/repository/postgres"
	"github.com/shreyas2228/momentcraftres/internal/adapters/storage"
	"github.com/shreyas2228/momentcraftres/internal/config"
	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/handlers"
	"github.com/shreyas2228/momentcraftres/internal/logger"
	"github.com/shreyas2228/momentcraftres/internal/middleware"
	"github.com/shreyas2228/momentcraftres/internal/services/admin"
	"github.com/shreyas2228/momentcraftres/internal/services/auth"
	"github.com/shreyas2228/momentcraftres/internal/services/booking"
	"github.com/shreyas2228/momentcraftres/internal/services/payment"
	"github.com/shreyas2228/momentcraftres/internal/services/review"
	"github.com/shreyas2228/momentcraftres/internal/services/vendor"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	log.WithField("driver", cfg.Database.Driver).Info("Starting MomentCraft API")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	store, err := openStore(ctx, cfg.Database, log)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to open datastore")
	}

	files, uploadDir, err := openStorage(cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure file storage")
	}

	var gateway domain.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		gateway = payments.NewStripe(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set - payments are disabled")
	}

	svc := handlers.Services{
		Auth:     auth.NewService(store, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL),
		Vendors:  vendor.NewService(store, files, cfg.Storage.MaxUpload, log),
		Bookings: booking.NewService(store),
		Admin:    admin.NewService(store, log),
		Reviews:  review.NewService(store),
		Payments: payment.NewService(store, gateway, log),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	opts := handlers.RouterOptions{
		Log:            log,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		MaxUpload:      cfg.Storage.MaxUpload,
		UploadDir:      uploadDir,
		Metrics:        middleware.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Ping:           func(c *gin.Context) error { return store.Ping(c.Request.Context()) },
	}
	if cfg.HTTP.RateLimitRPS > 0 {
		opts.Limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	}
	handlers.SetupRoutes(router, svc, opts)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to close datastore")
	}
	log.Info("Server stopped")
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, log logrus.FieldLogger) (*domain.Store, error) {
	switch cfg.Driver {
	case "mongo":
		s, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		log.WithField("database", cfg.MongoDatabase).Info("Connected to MongoDB")
		return s.Domain(), nil
	case "postgres":
		s, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to PostgreSQL")
		return s.Domain(), nil
	case "memory":
		log.Warn("Using the in-memory datastore - data is lost on restart")
		return memory.New().Domain(), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// openStorage returns the photo store and, for local storage, the directory
// to serve under /uploads.
func openStorage(cfg config.StorageConfig) (domain.FileStorage, string, error) {
	if cfg.Driver == "cloudinary" {
		c, err := storage.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		return c, "", err
	}
	return storage.NewLocal(cfg.UploadPath, "uploads"), cfg.UploadPath, nil
}

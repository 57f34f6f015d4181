package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/middleware"
	"github.com/shreyas2228/momentcraftres/internal/services/admin"
	"github.com/shreyas2228/momentcraftres/internal/services/auth"
	"github.com/shreyas2228/momentcraftres/internal/services/booking"
	"github.com/shreyas2228/momentcraftres/internal/services/payment"
	"github.com/shreyas2228/momentcraftres/internal/services/review"
	"github.com/shreyas2228/momentcraftres/internal/services/vendor"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth     auth.Service
	Vendors  vendor.Service
	Bookings booking.Service
	Admin    admin.Service
	Reviews  review.Service
	Payments payment.Service
}

type RouterOptions struct {
	Log         logrus.FieldLogger
	CORSOrigins []string
	// MaxUpload is the photo size limit in bytes.
	MaxUpload int64
	// UploadDir is served under /uploads when photos are kept on local disk.
	UploadDir string
	Limiter   *middleware.RateLimiter
	Metrics   *middleware.Metrics
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
	// Ping reports datastore health for /health.
	Ping func(*gin.Context) error
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func SetupRoutes(router *gin.Engine, svc Services, opts RouterOptions) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.Info("Setting up routes...")

	router.Use(middleware.RequestLogger(log))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	router.GET("/health", func(c *gin.Context) {
		if opts.Ping != nil {
			if err := opts.Ping(c); err != nil {
				c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": "momentcraft"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "momentcraft"})
	})
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	api := router.Group("/api")
	if opts.Limiter != nil {
		api.Use(opts.Limiter.Middleware())
	}
	protect := middleware.AuthMiddleware(svc.Auth)

	authHandler := NewAuthHandler(svc.Auth)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", protect, authHandler.Me)
		authGroup.GET("/logout", authHandler.Logout)
		authGroup.PUT("/updatedetails", protect, authHandler.UpdateDetails)
		authGroup.PUT("/updatepassword", protect, authHandler.UpdatePassword)
	}

	vendorHandler := NewVendorHandler(svc.Vendors, svc.Reviews, opts.MaxUpload)
	vendors := api.Group("/vendors")
	{
		vendors.GET("", vendorHandler.GetVendors)
		vendors.POST("", protect, middleware.RoleMiddleware(domain.RoleUser, domain.RoleAdmin), vendorHandler.CreateVendor)
		vendors.GET("/:id", vendorHandler.GetVendor)
		vendors.PUT("/:id", protect, vendorHandler.UpdateVendor)
		vendors.DELETE("/:id", protect, vendorHandler.DeleteVendor)
		vendors.PUT("/:id/photo", protect, vendorHandler.UploadPhoto)
		vendors.GET("/:id/reviews", vendorHandler.GetVendorReviews)
	}

	bookingHandler := NewBookingHandler(svc.Bookings, svc.Reviews, svc.Payments)
	bookings := api.Group("/bookings", protect)
	{
		bookings.GET("", bookingHandler.GetBookings)
		bookings.POST("", middleware.RoleMiddleware(domain.RoleUser, domain.RoleAdmin), bookingHandler.CreateBooking)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PUT("/:id", bookingHandler.UpdateBooking)
		bookings.DELETE("/:id", middleware.RoleMiddleware(domain.RoleUser, domain.RoleAdmin), bookingHandler.DeleteBooking)
		bookings.POST("/:id/reviews", bookingHandler.CreateReview)
		bookings.POST("/:id/payments/intent", bookingHandler.CreatePaymentIntent)
	}

	// Public webhook, authenticated by the gateway signature.
	paymentHandler := NewPaymentHandler(svc.Payments)
	api.POST("/payments/webhook", paymentHandler.HandleWebhook)

	adminHandler := NewAdminHandler(svc.Admin)
	adminGroup := api.Group("/admin", protect, middleware.RoleMiddleware(domain.RoleAdmin))
	{
		adminGroup.GET("/users", adminHandler.GetUsers)
		adminGroup.POST("/users", adminHandler.CreateUser)
		adminGroup.GET("/users/:id", adminHandler.GetUser)
		adminGroup.PUT("/users/:id", adminHandler.UpdateUser)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
		adminGroup.GET("/vendors/pending", adminHandler.GetPendingVendors)
		adminGroup.PUT("/vendors/:id/approve", adminHandler.ApproveVendor)
		adminGroup.PUT("/vendors/:id/reject", adminHandler.RejectVendor)
		adminGroup.GET("/bookings/export", adminHandler.ExportBookings)
	}
}

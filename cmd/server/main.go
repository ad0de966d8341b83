package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/cache"
	"github.com/GitHackerz/ezgo-sub000/internal/config"
	"github.com/GitHackerz/ezgo-sub000/internal/database"
	"github.com/GitHackerz/ezgo-sub000/internal/handlers"
	"github.com/GitHackerz/ezgo-sub000/internal/middleware"
	"github.com/GitHackerz/ezgo-sub000/internal/services"
	"github.com/GitHackerz/ezgo-sub000/pkg/jwt"
	"github.com/GitHackerz/ezgo-sub000/pkg/payment"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting booking service")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(startupCtx, cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(startupCtx, db.DB); err != nil {
			logger.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema applied")
	}

	// Rating summary cache is optional
	var ratingCache services.RatingCache
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(startupCtx, cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, rating summaries will not be cached")
		} else {
			defer redisClient.Close()
			ratingCache = cache.NewRatingCache(redisClient, cfg.Redis.TTL, logger)
			logger.WithField("addr", cfg.Redis.Addr).Info("Rating cache enabled")
		}
	}

	// Payment gateway
	var gateway payment.Gateway
	switch cfg.Payment.Mode {
	case "live":
		gateway = payment.NewHTTPGateway(payment.HTTPConfig{
			BaseURL:   cfg.Payment.BaseURL,
			SecretKey: cfg.Payment.SecretKey,
			Timeout:   cfg.Payment.Timeout,
		})
		logger.WithField("base_url", cfg.Payment.BaseURL).Info("Using live payment gateway")
	default:
		gateway = payment.NewSandboxGateway()
		logger.Warn("Using sandbox payment gateway, no real charges will be made")
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	store := database.NewStore(db.DB)
	seats := services.NewSeatInventoryService(logger)
	bookingService := services.NewBookingService(store, seats, logger)
	paymentService := services.NewPaymentService(store, seats, gateway, services.PaymentConfig{
		Currency: cfg.Payment.Currency,
		Timeout:  cfg.Payment.Timeout,
	}, logger)
	ratingService := services.NewRatingService(store, ratingCache, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck(db, version))

	// API v1 routes
	handlers.RegisterRoutes(router.Group("/api/v1"), handlers.Handlers{
		Bookings: handlers.NewBookingHandler(bookingService, logger),
		Trips:    handlers.NewTripHandler(bookingService, logger),
		Payments: handlers.NewPaymentHandler(paymentService, logger),
		Ratings:  handlers.NewRatingHandler(ratingService, logger),
	}, middleware.AuthMiddleware(jwtService, logger))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

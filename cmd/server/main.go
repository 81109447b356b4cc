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

	"github.com/crstnalianza/rabas-backend/internal/config"
	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/handlers"
	"github.com/crstnalianza/rabas-backend/internal/middleware"
	"github.com/crstnalianza/rabas-backend/internal/services"
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

	logger.Info("Starting Rabas Tourism Marketplace Backend")
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

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	adminRepo := database.NewAdminRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	applicationRepo := database.NewApplicationRepository(db)
	businessRepo := database.NewBusinessRepository(db)
	productRepo := database.NewProductRepository(db)
	dealRepo := database.NewDealRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	ratingRepo := database.NewRatingRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	applicationSvc := services.NewApplicationService(applicationRepo, logger)
	usernameSvc := services.NewUsernameService(userRepo)
	googleSvc := services.NewGoogleService(cfg.Google)
	mailerSvc := services.NewMailerService(cfg.SMTP, cfg.Server.PublicURL, logger)
	uploadSvc, err := services.NewUploadService(cfg.Upload, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize upload service: %v", err)
	}

	// Initialize and start background cleanup jobs
	cronService := services.NewCronService(sessionRepo, userRepo, dealRepo)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		userRepo,
		adminRepo,
		sessionRepo,
		usernameSvc,
		googleSvc,
		mailerSvc,
		uploadSvc,
		cfg.Session,
		cfg.Security,
		logger,
	)
	applicationHandler := handlers.NewApplicationHandler(applicationRepo, applicationSvc, logger)
	adminHandler := handlers.NewAdminHandler(userRepo, sessionRepo, applicationRepo, businessRepo, logger)
	businessHandler := handlers.NewBusinessHandler(businessRepo, uploadSvc, logger)
	productHandler := handlers.NewProductHandler(productRepo, businessRepo, uploadSvc, logger)
	dealHandler := handlers.NewDealHandler(dealRepo, productRepo, logger)
	bookingHandler := handlers.NewBookingHandler(bookingRepo, businessRepo, logger)
	ratingHandler := handlers.NewRatingHandler(ratingRepo, productRepo, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Uploaded images are served directly from disk
	router.Static(cfg.Upload.PublicPath, cfg.Upload.Dir)

	sessionAuth := middleware.SessionMiddleware(sessionRepo, cfg.Session.CookieName, cfg.Session.TTL)

	// Authentication routes (public)
	router.POST("/signup", authHandler.Signup)
	router.POST("/login", authHandler.Login)
	router.POST("/google-login", authHandler.GoogleLogin)
	router.POST("/forgot-password", authHandler.ForgotPassword)
	router.POST("/reset-password/:token", authHandler.ResetPassword)
	router.GET("/check-login", authHandler.CheckLogin)
	router.POST("/admin/login", authHandler.AdminLogin)
	router.GET("/admin/check-login", authHandler.AdminCheckLogin)

	// Public browse routes
	router.GET("/businesses", businessHandler.List)
	router.GET("/businesses/:business_id", businessHandler.Get)
	router.GET("/products", productHandler.List)
	router.GET("/products/:product_id", productHandler.Get)
	router.GET("/products/:product_id/ratings", ratingHandler.ListForProduct)
	router.GET("/deals", dealHandler.ListActive)

	// Authenticated user routes
	user := router.Group("")
	user.Use(sessionAuth, middleware.RequireUser())
	{
		user.POST("/logout", authHandler.Logout)
		user.GET("/profile", authHandler.GetProfile)
		user.PUT("/profile", authHandler.UpdateProfile)
		user.POST("/profile/image", authHandler.UploadProfileImage)

		// Business application workflow
		user.POST("/submitBusinessApplication", applicationHandler.Submit)
		user.GET("/businessApplications", applicationHandler.ListMine)
		user.GET("/businessApplications/:id", applicationHandler.Get)

		// Business owner routes
		user.GET("/my-businesses", businessHandler.ListMine)
		user.PUT("/businesses/:business_id/card", businessHandler.UpdateCard)
		user.PUT("/businesses/:business_id/about-us", businessHandler.UpdateAboutUs)
		user.PUT("/businesses/:business_id/facilities", businessHandler.UpdateFacilities)
		user.PUT("/businesses/:business_id/policies", businessHandler.UpdatePolicies)
		user.PUT("/businesses/:business_id/contact-info", businessHandler.UpdateContactInfo)
		user.PUT("/businesses/:business_id/opening-hours", businessHandler.UpdateOpeningHours)
		user.POST("/businesses/:business_id/logo", businessHandler.UploadLogo)
		user.POST("/businesses/:business_id/hero-images", businessHandler.UploadHeroImages)

		// Products and deals
		user.POST("/products", productHandler.Create)
		user.PUT("/products/:product_id", productHandler.Update)
		user.DELETE("/products/:product_id", productHandler.Delete)
		user.POST("/products/images", productHandler.UploadImages)
		user.POST("/add-deals", dealHandler.Create)
		user.GET("/my-deals", dealHandler.ListMine)
		user.DELETE("/deals/:deal_id", dealHandler.Delete)

		// Bookings
		user.POST("/book-accommodation", bookingHandler.BookAccommodation)
		user.POST("/book-table", bookingHandler.BookTable)
		user.POST("/book-activity", bookingHandler.BookActivity)
		user.POST("/add-walkin-booking", bookingHandler.AddWalkIn)
		user.PUT("/update-booking-status/:id", bookingHandler.UpdateStatus)
		user.PUT("/cancel-booking/:id", bookingHandler.Cancel)
		user.GET("/bookings", bookingHandler.ListMine)
		user.GET("/business-bookings/:business_id",
			middleware.RequireBusinessOwner(businessRepo, "business_id"),
			bookingHandler.ListForBusiness)

		// Ratings
		user.POST("/rate-product", ratingHandler.Create)
	}

	// Admin routes
	admin := router.Group("/admin")
	admin.Use(sessionAuth, middleware.RequireAdmin())
	{
		admin.POST("/logout", authHandler.Logout)
		admin.GET("/users", adminHandler.ListUsers)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.GET("/businessApplications", adminHandler.ListApplications)
		admin.GET("/businesses", adminHandler.ListBusinesses)
		admin.GET("/dashboard", adminHandler.Dashboard)
	}

	// The review endpoint keeps its historical top-level path
	router.PUT("/updateStatus-businessApplications/:id",
		sessionAuth, middleware.RequireAdmin(), adminHandler.ReviewApplication)

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

	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

package main

import (
	"fmt"
	"net/http"
	"os"

	"audycon/internal/config"
	"audycon/internal/database"
	"audycon/internal/handlers"
	"audycon/internal/identity"
	"audycon/internal/logger"
	"audycon/internal/middleware"
	"audycon/internal/services"
	"audycon/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "audycon/internal/docs" // Import swagger docs
)

// @title           AUDYCON Admin API
// @version         1.0
// @description     Administrative backend for the AUDYCON accounting platform: account lifecycle, role assignment, and the audit trail.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity store access token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize collaborators and services
	db := dbManager.DB()
	identityClient := identity.NewClient(appConfig.IdentityURL, appConfig.IdentityServiceKey)
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db, identityClient, auditService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(accountService, identityClient)
	adminHandler := handlers.NewAdminHandler(accountService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)

	// The deletion endpoint accepts either a bearer token or the admin
	// panel secret, so it sits outside the admin group with only optional
	// actor resolution; the handler enforces the credential itself.
	v1.POST("/admin/users/delete", middleware.OptionalAuth(), adminHandler.DeleteUser)

	// Authenticated routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Own profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	// Admin console routes
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly(accountService))
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id", adminHandler.EditUser)
	admin.PUT("/users/:id/role", adminHandler.ChangeRole)
	admin.POST("/users/:id/status", adminHandler.ToggleStatus)
	admin.GET("/users/:id/logs", auditHandler.UserLogs)
	admin.GET("/logs", auditHandler.ListLogs)

	log.Infof("Starting AUDYCON admin backend on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/controlink-dev/arpoone-gateway/environments"
	"github.com/controlink-dev/arpoone-gateway/handlers"
	"github.com/controlink-dev/arpoone-gateway/internal/arpoone"
	"github.com/controlink-dev/arpoone-gateway/internal/config"
	"github.com/controlink-dev/arpoone-gateway/internal/middlewares"
	"github.com/controlink-dev/arpoone-gateway/internal/repository"
	"github.com/controlink-dev/arpoone-gateway/internal/service"
	"github.com/controlink-dev/arpoone-gateway/pkg/database"
	"github.com/controlink-dev/arpoone-gateway/pkg/logger"
	"github.com/controlink-dev/arpoone-gateway/pkg/redis"
	"github.com/controlink-dev/arpoone-gateway/pkg/validator"
	"github.com/controlink-dev/arpoone-gateway/routes"

	_ "github.com/controlink-dev/arpoone-gateway/docs" // swagger docs
)

// @title Arpoone Gateway API
// @version 1.0
// @description Notification dispatch gateway for the Arpoone SMS/email provider

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	logger.Init()

	if err := godotenv.Load(); err != nil {
		logger.Infof("No .env file found, relying on OS environment variables")
	}

	// Load config
	cfg := environments.Load()

	// Hard-fail if required settings are missing
	if cfg.Auth.DispatchAPIKey == "" {
		logger.Fatalf("DISPATCH_API_KEY is required but not set")
	}
	if !cfg.Arpoone.MultiTenant {
		for _, required := range []struct{ name, value string }{
			{"ARPOONE_API_KEY", cfg.Arpoone.APIKey},
			{"ARPOONE_ORGANIZATION_ID", cfg.Arpoone.OrganizationID},
			{"ARPOONE_SMS_SENDER", cfg.Arpoone.SmsSender},
		} {
			if required.value == "" {
				logger.Fatalf("%s is required but not set, please add it to your .env file", required.name)
			}
		}
	}

	logger.Infof("Starting Arpoone Gateway...")

	// Resolve the configurable table and column names once, up front.
	schema, err := repository.NewSchema(cfg.Arpoone)
	if err != nil {
		logger.Fatalf("Invalid schema configuration: %v", err)
	}

	// Init DB
	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(db, schema, cfg.Arpoone.MultiTenant); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed data
	if os.Getenv("SEED_DATA") == "true" {
		if err := database.SeedTestData(db, schema, cfg.Arpoone.MultiTenant); err != nil {
			logger.Warnf("Failed to seed test data: %v", err)
		}
	}

	// Init redis
	var redisClient *redis.Client
	redisClient, err = redis.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis not available, caching disabled: %v", err)
		redisClient = nil
	}

	// Initialize repositories
	configRepo := repository.NewConfigurationRepository(db, schema)
	dispatchRepo := repository.NewDispatchLogRepository(db, schema)
	auditRepo := repository.NewWebhookAuditRepository(db, schema)

	// Initialize provider client and services
	providerClient := arpoone.NewClient(cfg.Arpoone.RequestTimeout)
	resolver := config.NewResolver(cfg.Arpoone, configRepo)

	var cache service.Cache
	if redisClient != nil {
		cache = redisClient
	}

	dispatchService := service.NewDispatchService(
		resolver,
		providerClient,
		dispatchRepo,
		cache,
		cfg.Arpoone,
		cfg.Server.AppURL,
	)
	reconcileService := service.NewReconcileService(
		configRepo,
		dispatchRepo,
		auditRepo,
		cfg.Arpoone,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisClient)
	dispatchHandler := handlers.NewDispatchHandler(dispatchService)
	webhookHandler := handlers.NewWebhookHandler(reconcileService)
	logHandler := handlers.NewLogHandler(dispatchService)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middlewares.APIKeyHeader,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, dispatchHandler, webhookHandler, logHandler, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Close database connection
	logger.Infof("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}

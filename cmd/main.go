package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"products-import-service/internal/config"
	"products-import-service/internal/events"
	"products-import-service/internal/handlers"
	"products-import-service/internal/middleware"
	"products-import-service/internal/repository"
)

// @title Products Import Service API
// @version 1.0
// @description Bulk product import for the commerce dashboard: decodes CSV, XLSX and JSON files with Portuguese or English headers, validates every row and loads accepted products into the catalog.
// @BasePath /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "development" {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	logger := logrus.WithField("service", "products-import-service")

	db, err := cfg.InitDB()
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Invalid REDIS_URL, catalog snapshot caching disabled")
		} else {
			redisClient = redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				logger.WithError(err).Warn("Redis unreachable, catalog snapshot caching disabled")
				redisClient = nil
			}
			cancel()
		}
	}

	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unreachable, import events disabled")
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	store := repository.NewProductsRepository(db, redisClient)
	importHandler := handlers.NewImportHandler(store, publisher, cfg.MaxUploadBytes, cfg.ImportWorkers, logger)
	productsHandler := handlers.NewProductsHandler(store, logger)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", readiness(db, redisClient))

	api := router.Group("/api/v1")
	{
		api.POST("/products/import", importHandler.ImportProducts)
		api.GET("/products/import/template", importHandler.ImportTemplate)
		api.GET("/products/lookup", productsHandler.Lookup)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting products import service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
}

// readiness verifies the backing stores the import path depends on.
func readiness(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "database"})
			return
		}
		status := gin.H{"status": "ready"}
		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				status["cache"] = "degraded"
			}
		}
		c.JSON(http.StatusOK, status)
	}
}

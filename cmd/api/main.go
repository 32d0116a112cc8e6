package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/api/handlers"
	"github.com/reviewlens/backend/internal/cache/redis"
	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/middleware/ratelimit"
	"github.com/reviewlens/backend/internal/middleware/security"
	"github.com/reviewlens/backend/internal/middleware/validation"
	"github.com/reviewlens/backend/internal/pipeline"
	"github.com/reviewlens/backend/internal/source"
	"github.com/reviewlens/backend/internal/store"
	"github.com/reviewlens/backend/pkg/config"
	appLogger "github.com/reviewlens/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting ReviewLens API Server")

	metrics.Init()

	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute

	var blobCache source.BlobCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, raw downloads will not be cached", zap.Error(err))
		} else {
			defer redisClient.Close()
			blobCache = redisClient
		}
	}

	sourceClient := source.NewClient(cfg.Source, blobCache, ttl)
	builder := pipeline.NewBuilder(sourceClient)
	snapshotStore := store.New(builder, ttl)
	defer snapshotStore.Stop()

	if err := snapshotStore.StartSchedule(cfg.Cache.RefreshSchedule); err != nil {
		appLogger.Fatal("Failed to start refresh schedule", zap.Error(err))
	}

	warmCtx, cancel := context.WithTimeout(context.Background(), 2*time.Duration(cfg.Source.TimeoutSec)*time.Second)
	if _, err := snapshotStore.Current(warmCtx); err != nil {
		appLogger.Warn("Initial snapshot build failed, will retry on demand", zap.Error(err))
	}
	cancel()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.Log,
	}))

	reviewsHandler := handlers.NewReviewsHandler(snapshotStore, cfg.Cache.TopAppsLimit, cfg.Cache.HistogramBins)
	datasetHandler := handlers.NewDatasetHandler(snapshotStore)

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")

	api.Get("/reviews", reviewsHandler.ListReviews)
	api.Get("/reviews/summary", reviewsHandler.GetSummary)
	api.Get("/reviews/aggregates", reviewsHandler.GetAggregates)
	api.Get("/reviews/filters", reviewsHandler.GetFilterOptions)

	api.Get("/dataset", datasetHandler.GetStatus)
	api.Post("/dataset/refresh", datasetHandler.Refresh)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

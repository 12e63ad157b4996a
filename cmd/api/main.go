package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/voyago/backend/config"
	"github.com/voyago/backend/internal/api"
	"github.com/voyago/backend/internal/database"
	"github.com/voyago/backend/internal/middleware"
	"github.com/voyago/backend/internal/router"
	"github.com/voyago/backend/internal/server"
	"github.com/voyago/backend/internal/service"
	"github.com/voyago/backend/internal/timeline"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Redis powers rate limiting and cross-instance timeline fan-out; the
	// service stays up without it, in a degraded single-instance mode.
	redisClient, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		logger.Warn("failed to connect to Redis, continuing without fan-out and rate limiting", zap.Error(err))
		redisClient = nil
	}

	hub := timeline.NewHub(logger)
	gemini := service.NewGeminiService(cfg, logger)
	recommendations := service.NewRecommendationService(db, gemini, redisClient, hub, logger)

	lifecycleCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := hub.Run(lifecycleCtx); err != nil && err != context.Canceled {
			logger.Error("timeline hub stopped", zap.Error(err))
		}
	}()

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewSubmissionRateLimiter(redisClient)

		relay := timeline.NewRelay(redisClient, service.RecordsChannel, hub, recommendations.List, logger)
		go func() {
			if err := relay.Run(lifecycleCtx); err != nil && err != context.Canceled {
				logger.Error("timeline relay stopped", zap.Error(err))
			}
		}()
	}

	recommendHandler := api.NewRecommendHandler(gemini, logger)
	recommendationHandler := api.NewRecommendationHandler(recommendations, hub, cfg.AllowedOrigins, logger)

	engine := router.Setup(cfg, db, recommendHandler, recommendationHandler, rateLimiter, logger)
	srv := server.New(cfg, engine, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	logger.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

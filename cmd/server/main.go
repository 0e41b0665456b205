// Package main runs the Q&A moderation and synthesis HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-webinar/qna/config"
	"github.com/aura-webinar/qna/internal/ai"
	"github.com/aura-webinar/qna/internal/auth"
	"github.com/aura-webinar/qna/internal/httpapi"
	"github.com/aura-webinar/qna/internal/middleware"
	"github.com/aura-webinar/qna/internal/questions"
	"github.com/aura-webinar/qna/internal/ratelimit"
	"github.com/aura-webinar/qna/internal/realtime"
	"github.com/aura-webinar/qna/internal/synthesis"
	"github.com/aura-webinar/qna/pkg/database"
	"github.com/aura-webinar/qna/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var store questions.Store = questions.NewMemoryStore()
	if cfg.Database.URL != "" {
		pool, err := database.NewPostgresPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		store = questions.NewRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, questions are kept in memory")
	}

	hub := realtime.NewHub(logger, nil, nil)
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Mode == "counter" {
		limiter = ratelimit.NewCounter(cfg.RateLimit.Ceiling, cfg.RateLimit.Window)
	}
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
		hub = realtime.NewHub(logger, redisPubSub, redisPubSub)
		if cfg.RateLimit.Mode == "redis" {
			limiter = ratelimit.NewSlidingWindow(rdb.Client, cfg.RateLimit.Ceiling, cfg.RateLimit.Window)
		}
	}

	var generator synthesis.TextGenerator
	provider, err := ai.FromConfig(ctx, cfg.AI)
	if err != nil {
		logger.Warn("ai provider unavailable, synthesis runs in fallback mode", zap.String("provider", cfg.AI.Provider), zap.Error(err))
	} else if provider != nil {
		generator = provider
		logger.Info("ai provider configured", zap.String("provider", cfg.AI.Provider), zap.String("model", cfg.AI.Model))
	}

	app := httpapi.New(httpapi.Options{
		JWT:               auth.NewJWTService(cfg.JWT.Secret, 0),
		Questions:         store,
		Generator:         generator,
		Synthesis:         cfg.Synthesis,
		GenerationTimeout: cfg.AI.Timeout,
		Limiter:           limiter,
		Hub:               hub,
		Logger:            logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      middleware.CORS(cfg.Server.CORSAllowedOrigins, app.Router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("rate_limit", cfg.RateLimit.Mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adboardhq/adboard/internal/auth"
	"github.com/adboardhq/adboard/internal/config"
	"github.com/adboardhq/adboard/internal/database"
	"github.com/adboardhq/adboard/internal/httpserver"
	"github.com/adboardhq/adboard/internal/metrics"
	"github.com/adboardhq/adboard/internal/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	defer logger.Sync()

	logger.Info("starting Adboard",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
	)

	ctx := context.Background()

	// Try to connect to PostgreSQL
	db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Warn("PostgreSQL not available, using in-memory storage", zap.Error(err))
		db = nil
	} else {
		defer db.Close()
	}

	// Try to connect to Redis
	var rdb *database.RedisDB
	if cfg.Redis.Enabled {
		rdb, err = database.NewRedisDB(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis not available, statistics caching disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	// ClickHouse only when selected as the statistics backend
	var ch *database.ClickHouseDB
	if cfg.Stats.Backend == "clickhouse" {
		ch, err = database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			logger.Warn("ClickHouse not available, falling back to primary store for statistics", zap.Error(err))
			ch = nil
		} else {
			defer ch.Close()
		}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics("adboard")
		if db != nil {
			go reportPoolStats(db, m)
		}
	}

	deps := &httpserver.Dependencies{
		DB:         db,
		Redis:      rdb,
		ClickHouse: ch,
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
	}

	handler := httpserver.NewServer(deps)

	// Middleware chain: recovery wraps everything, then request
	// logging, rate limiting, and token validation.
	tokens := auth.NewTokenProvider(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	authMW := middleware.NewAuthMiddleware(tokens, cfg.Auth, logger)
	rateMW := middleware.NewRateLimitMiddleware(cfg.RateLimit, logger)
	rateMW.SetMetrics(m)
	logMW := middleware.NewLoggingMiddleware(logger, m)
	recoveryMW := middleware.NewRecoveryMiddleware(logger)

	chained := recoveryMW.Handler(logMW.Handler(rateMW.Handler(authMW.Handler(handler))))

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      chained,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// reportPoolStats snapshots database pool counters into the gauge.
func reportPoolStats(db *database.PostgresDB, m *metrics.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		stat := db.Stats()
		m.DBConnections.WithLabelValues("total").Set(float64(stat.TotalConns()))
		m.DBConnections.WithLabelValues("idle").Set(float64(stat.IdleConns()))
		m.DBConnections.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
	}
}

func setupLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config

	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch cfg.Log.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}

	return logger
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api"
	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/notify"
	"github.com/jafarshop/storefront/internal/persist"
	"github.com/jafarshop/storefront/internal/storefront"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	opts := storefront.Options{
		Backend:   backend.NewClient(cfg.Backend, logger),
		SocketURL: cfg.Backend.SocketURL,
		Dialer:    notify.WebsocketDialer{HandshakeTimeout: cfg.Backend.Timeout},
		Logger:    logger,
	}

	// Persistence is optional; without Redis sessions live in memory only
	rdb, err := persist.Connect(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Running without session persistence", zap.Error(err))
	} else {
		defer rdb.Close()
		opts.Persist = persist.NewRedisStore(rdb, cfg.Redis.TTL, logger)
	}

	reg := storefront.NewRegistry(opts)
	router := api.NewRouter(cfg, reg, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Storefront gateway started",
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("environment", cfg.Environment),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	reg.CloseAll(ctx)

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}

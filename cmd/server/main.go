package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/api"
	"github.com/Harshitk-cp/filinggraph/internal/bootstrap"
	"github.com/Harshitk-cp/filinggraph/internal/config"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger, err := bootstrap.NewLogger(config.LogLevel())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := bootstrap.NewEngine(logger)
	if err != nil {
		logger.Fatal("failed to initialize NLP engine", zap.Error(err))
	}
	defer func() { _ = engine.Close() }()

	svc, err := bootstrap.NewExtractionService(engine, logger)
	if err != nil {
		logger.Fatal("failed to initialize extraction service", zap.Error(err))
	}

	embedder := bootstrap.NewEmbeddingClient(logger)
	deps := api.Deps{
		Extractor:      svc,
		Embedder:       embedder,
		APIKey:         config.APIKey(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}

	pool, extractionStore, err := bootstrap.OpenDatabase(ctx, embedder, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if pool != nil {
		defer pool.Close()
		deps.Store = extractionStore
		deps.Ping = pool.Ping
	} else {
		logger.Info("DATABASE_URL not set, persistence disabled")
	}

	app := api.NewApp(deps, logger)
	go app.RateLimiter.RunCleanup(ctx, 10*time.Minute)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

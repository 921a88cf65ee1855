package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/luminagear/lumina-support/internal/api"
	"github.com/luminagear/lumina-support/internal/config"
	"github.com/luminagear/lumina-support/internal/db"
	"github.com/luminagear/lumina-support/internal/llm"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	// A .env file is optional; real environments set the vars directly.
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	store, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}

	provider, err := llm.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model)
	if err != nil {
		logger.Fatal("failed to initialize provider client", zap.Error(err))
	}

	chat := llm.NewService(provider, store, logger,
		llm.WithHistoryWindow(cfg.HistoryWindow))

	handler := api.NewHandler(store, chat, logger)
	mux := http.NewServeMux()
	handler.Routes(mux)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.WithLogging(logger, mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("model", cfg.Model))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = multierr.Append(srv.Shutdown(shutdownCtx), store.Close())
	if err != nil {
		logger.Error("shutdown finished with errors", zap.Error(err))
		return
	}
	logger.Info("shutdown complete")
}

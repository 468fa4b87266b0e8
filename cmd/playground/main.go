package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	convoplay "github.com/convoplay/convoplay"
	"github.com/convoplay/convoplay/internal/archive"
	"github.com/convoplay/convoplay/internal/config"
	"github.com/convoplay/convoplay/internal/domain"
	"github.com/convoplay/convoplay/internal/provider"
	"github.com/convoplay/convoplay/internal/repository"
	"github.com/convoplay/convoplay/internal/server"
	"github.com/convoplay/convoplay/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional transcript archive
	var recorder *archive.Recorder
	if cfg.ArchiveEnabled() {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		migrationsFS, err := fs.Sub(convoplay.MigrationsFS, "migrations")
		if err != nil {
			slog.Error("failed to load embedded migrations", "error", err)
			os.Exit(1)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		recorder = archive.New(pool)
		slog.Info("transcript archive enabled")
	}

	// Provider clients and services
	clients := map[domain.ProviderName]provider.Client{
		domain.ProviderOpenRouter: provider.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBase),
		domain.ProviderGoogle:     provider.NewGeminiClient(cfg.GoogleKey, cfg.GoogleBase),
	}
	models := service.NewModelManager(clients)
	catalog := service.NewCatalog(cfg.OpenAIKey, cfg.OpenAIBase)

	var turnRecorder service.TurnRecorder
	var archiveReader server.ArchiveReader
	if recorder != nil {
		turnRecorder = recorder
		archiveReader = recorder
	}
	sessions := service.NewSessionStore(models, catalog, turnRecorder)

	// Start idle session cleanup goroutine
	go func() {
		ticker := time.NewTicker(config.SessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Cleanup(config.SessionTTL)
			}
		}
	}()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server.New(sessions, models, catalog, archiveReader).Router(),
	}

	go func() {
		slog.Info("starting playground", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}

	slog.Info("playground stopped gracefully")
}

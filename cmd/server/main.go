package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/examhall/backend/internal/config"
	"github.com/examhall/backend/internal/handler"
	"github.com/examhall/backend/internal/logger"
	"github.com/examhall/backend/internal/remote"
	"github.com/examhall/backend/internal/router"
	"github.com/examhall/backend/internal/session"
	"github.com/examhall/backend/internal/store"
	"github.com/examhall/backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExamHall Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Snapshot Store ─────────────────────────────────────
	var kv store.KeyStore
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("Using in-memory snapshot store, sessions will not survive restart")
		kv = store.NewMemoryStore()
	default:
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisStore.Close()
		kv = redisStore
	}

	// ─── Initialize Remote Clients ─────────────────────────────────────
	catalogClient := remote.NewCatalogClient(cfg.CatalogAPIURL, cfg.HTTPTimeout)
	resultClient := remote.NewResultClient(cfg.ResultAPIURL, cfg.HTTPTimeout)

	// ─── Initialize Session Core ───────────────────────────────────────
	aggregator := session.NewResultAggregator(resultClient, log)
	manager := session.NewManager(kv, aggregator, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(manager),
		Catalog: handler.NewCatalogHandler(catalogClient, log),
		Result:  handler.NewResultHandler(resultClient, log),
	}
	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop live countdowns; persisted snapshots stay recoverable.
	manager.Shutdown()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

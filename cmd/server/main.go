package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hirestack/assessment-engine/internal/config"
	"github.com/hirestack/assessment-engine/internal/database"
	"github.com/hirestack/assessment-engine/internal/engine"
	"github.com/hirestack/assessment-engine/internal/handler"
	"github.com/hirestack/assessment-engine/internal/logger"
	"github.com/hirestack/assessment-engine/internal/repository"
	"github.com/hirestack/assessment-engine/internal/router"
	"github.com/hirestack/assessment-engine/internal/sandbox"
	"github.com/hirestack/assessment-engine/internal/store"
	"github.com/hirestack/assessment-engine/internal/validator"
	"github.com/hirestack/assessment-engine/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Assessment Engine")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Persistence ────────────────────────────────────────
	// Postgres holds the durable snapshots; Redis sits in front as a
	// read-through cache so hot sessions skip the database.
	sessionStore := store.NewCachedStore(store.NewPostgresStore(pool), rdb, cfg.SnapshotCacheTTL, log)
	catalog := repository.NewCachedCatalog(repository.NewCatalogRepository(pool), rdb, cfg.CatalogCacheTTL, log)

	// ─── Initialize Sandbox ────────────────────────────────────────────
	executor := sandbox.NewIsolateExecutor(nil, nil, cfg.SandboxShortCircuit, log)

	// ─── Initialize Engine ─────────────────────────────────────────────
	engineCfg := engine.DefaultConfig()
	engineCfg.AutoSaveInterval = cfg.AutoSaveInterval
	engineCfg.ViolationLimit = cfg.ViolationLimit

	sink := worker.NewRedisViolationQueue(rdb)
	eng := engine.New(sessionStore, catalog, executor, sink, engineCfg, log)
	defer eng.Close()

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workers, _ := errgroup.WithContext(workerCtx)

	violationWorker := worker.NewViolationWorker(pool, rdb, log)
	workers.Go(func() error {
		violationWorker.Start(workerCtx)
		return nil
	})

	expiryWorker := worker.NewExpiryWorker(eng, log)
	if err := expiryWorker.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start expiry worker")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(eng, log),
		Proctor: handler.NewProctorHandler(eng, log),
	}
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

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	expiryWorker.Stop()
	workerCancel()
	if err := workers.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

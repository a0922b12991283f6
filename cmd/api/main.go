package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/http-server/handlers/job"
	"game-empire/internal/http-server/router"
	"game-empire/internal/lib/logger/handler/slogpretty"
	"game-empire/internal/lib/logger/sl"
	"game-empire/internal/storage/sqlstore"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting server...", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlstore.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		}
	}()

	publisher, err := event.New(cfg.Events, log)
	if err != nil {
		log.Error("Failed to init events", sl.Err(err))
		os.Exit(1)
	}

	queue := job.NewJobQueue(cfg.Workers.QueueSize)
	pool := job.NewWorkerPool(cfg.Workers.Size, queue)
	pool.Start()

	api := router.New(log, cfg, store, publisher, queue)

	if cfg.Roulette.SessionTTL > 0 {
		expired, err := api.Closer.Sweep(ctx, cfg.Roulette.SessionTTL, time.Now())
		if err != nil {
			log.Error("Failed to sweep idle sessions", sl.Err(err))
		} else {
			log.Info("Idle sessions expired", slog.Int("count", expired))
		}

		go sweepLoop(ctx, log, api, cfg.Roulette.SessionTTL)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      api.Handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("Server started", slog.String("address", cfg.HTTPServer.Address))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down server", sl.Err(err))
	}

	pool.Stop()

	if closer, ok := publisher.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	log.Info("Server stopped")
}

// sweepLoop catches sessions whose expiry job was lost, e.g. across restarts.
func sweepLoop(ctx context.Context, log *slog.Logger, api *router.Router, ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := api.Closer.Sweep(ctx, ttl, now); err != nil {
				log.Error("Failed to sweep idle sessions", sl.Err(err))
			}
		}
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlogLogger()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlogLogger() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

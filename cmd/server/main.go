package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krkdev/contacts-api/internal/app"
	"github.com/krkdev/contacts-api/internal/config"
	"github.com/krkdev/contacts-api/internal/jobs"
	"github.com/krkdev/contacts-api/internal/logger"
	"github.com/krkdev/contacts-api/internal/routes"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Load()

	flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer flush()

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, dir := range []string{cfg.TmpDir, cfg.PublicDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	app, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	scheduler, err := jobs.NewScheduler(jobs.NewCleanup(app.Sessions, app.Tokens, cfg.TmpDir), cfg.CleanupSchedule)
	if err != nil {
		return err
	}
	scheduler.Start()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serverErr:
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Error("graceful shutdown failed", "error", shutdownErr)
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

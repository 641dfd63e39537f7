package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"xlsimport/internal/backend"
	"xlsimport/internal/config"
	apphttp "xlsimport/internal/http"
	applog "xlsimport/internal/log"
	"xlsimport/internal/retry"
	"xlsimport/internal/services"
	"xlsimport/internal/task"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.Setup()
	logger = applog.ForComponent(logger, applog.ComponentApp)

	logger.Info("Starting xlsimport server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backends, err := backend.Build(cfg)
	if err != nil {
		logger.Error("Failed to initialize backends", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := backends.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	tasks := task.NewStore(cfg.TaskRetention)

	procCfg := services.DefaultImportProcessorConfig()
	procCfg.CityPause = cfg.CityPause
	procCfg.Retry = retry.Policy{Attempts: cfg.RetryAttempts, Delay: cfg.RetryDelay}

	var events services.TaskEventPublisher
	if backends.Events != nil {
		events = backends.Events
	}
	processor := services.NewImportProcessor(backends.Settings, tasks, backends.Clients, events, procCfg)

	srv := apphttp.NewServer(cfg, backends.Settings, tasks, backends.Clients, processor)
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening", "port", cfg.Port,
			"settings_backend", cfg.SettingsBackend,
			"sheets_backend", cfg.SheetsBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := tasks.RunJanitor(ctx, cfg.JanitorInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

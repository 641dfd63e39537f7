// Package backend assembles the storage and spreadsheet backends the
// service runs on, selected by configuration.
package backend

import (
	"fmt"
	"log/slog"

	"xlsimport/internal/amqp"
	"xlsimport/internal/config"
	"xlsimport/internal/settings"
	"xlsimport/internal/settings/jsonfile"
	"xlsimport/internal/sheets"
	gsheet "xlsimport/internal/sheets/google"
	"xlsimport/internal/sheets/memory"
	"xlsimport/internal/storage"
)

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result bundles the assembled backends and their cleanup.
type Result struct {
	Settings settings.Store
	Clients  sheets.ClientProvider
	Events   *amqp.Client // nil when AMQP is not configured
	Cleanup  CleanupFunc
}

// Build wires the settings store, the spreadsheet client provider, and
// the optional event publisher according to cfg.
func Build(cfg *config.Config) (*Result, error) {
	res := &Result{Cleanup: func() error { return nil }}

	switch cfg.SettingsBackend {
	case "json":
		res.Settings = jsonfile.New(cfg.SettingsPath)
		slog.Info("Initialized JSON settings store", "path", cfg.SettingsPath)
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite settings store: %w", err)
		}
		res.Settings = repo
		res.Cleanup = chain(res.Cleanup, repo.Close)
		slog.Info("Initialized SQLite settings store", "db_path", cfg.SQLiteDBPath)
	default:
		return nil, fmt.Errorf("unsupported settings backend: %s", cfg.SettingsBackend)
	}

	switch cfg.SheetsBackend {
	case "google":
		res.Clients = gsheet.NewFactory(cfg.ClientTTL)
		slog.Info("Initialized Google Sheets client factory", "ttl", cfg.ClientTTL)
	case "memory":
		res.Clients = &memory.Provider{Store: memory.New()}
		slog.Info("Initialized in-memory sheets backend")
	default:
		return nil, fmt.Errorf("unsupported sheets backend: %s", cfg.SheetsBackend)
	}

	if cfg.AMQPURL != "" {
		events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Events are best-effort; the importer works without them.
			slog.Warn("Failed to initialize AMQP client, continuing without task events", "error", err)
		} else {
			res.Events = events
			res.Cleanup = chain(res.Cleanup, events.Close)
			slog.Info("Initialized AMQP task events",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	return res, nil
}

func chain(first, second CleanupFunc) CleanupFunc {
	return func() error {
		err := second()
		if ferr := first(); ferr != nil && err == nil {
			err = ferr
		}
		return err
	}
}

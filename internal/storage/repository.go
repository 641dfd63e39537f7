// Package storage provides the SQLite-backed settings store, used where a
// plain settings.json is not enough (shared volumes, concurrent editors).
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"xlsimport/internal/settings"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ settings.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements settings.Store. Rows come back in configured position
// order; that order drives city prefix matching downstream.
func (r *SQLiteRepository) Load(ctx context.Context) (*settings.Settings, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT city, spreadsheet_url FROM city_settings ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query city settings: %w", err)
	}
	defer rows.Close()

	out := settings.New()
	for rows.Next() {
		var city, url string
		if err := rows.Scan(&city, &url); err != nil {
			return nil, fmt.Errorf("scan city settings row: %w", err)
		}
		out.Set(city, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate city settings: %w", err)
	}
	return out, nil
}

// Save implements settings.Store with replace-all semantics, matching the
// JSON-file store: the saved object is the complete configuration.
func (r *SQLiteRepository) Save(ctx context.Context, cfg *settings.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM city_settings`); err != nil {
		return fmt.Errorf("clear city settings: %w", err)
	}

	for pos, city := range cfg.Cities() {
		url, _ := cfg.URL(city)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO city_settings (city, spreadsheet_url, position) VALUES (?, ?, ?)`,
			city, url, pos); err != nil {
			return fmt.Errorf("insert settings for %s: %w", city, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings save: %w", err)
	}

	slog.InfoContext(ctx, "City settings saved to SQLite", "cities", cfg.Len())
	return nil
}

// Package jsonfile persists settings as a JSON object on disk, the format
// the original deployment used (settings.json next to the binary).
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"xlsimport/internal/settings"
)

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

var _ settings.Store = (*Store)(nil)

// Load reads settings from the file. A missing file is empty settings,
// not an error: the service is usable before anything is configured.
func (s *Store) Load(_ context.Context) (*settings.Settings, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings.New(), nil
		}
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	out := settings.New()
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode settings file: %w", err)
	}
	return out, nil
}

// Save writes settings atomically via a temp file rename.
func (s *Store) Save(_ context.Context, cfg *settings.Settings) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

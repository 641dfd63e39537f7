package jsonfile

import (
	"context"
	"path/filepath"
	"testing"

	"xlsimport/internal/settings"
)

func TestStore_MissingFileIsEmpty(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "settings.json"))

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("expected empty settings, got %v", got.Cities())
	}
}

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := New(path)
	ctx := context.Background()

	cfg := settings.New()
	cfg.Set("Балашиха", "https://docs.google.com/spreadsheets/d/abc/edit")
	cfg.Set("Сергиев Посад", "https://docs.google.com/spreadsheets/d/def/edit")

	if err := store.Save(ctx, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cities := got.Cities()
	if len(cities) != 2 || cities[0] != "Балашиха" || cities[1] != "Сергиев Посад" {
		t.Errorf("cities = %v", cities)
	}
	if u, _ := got.URL("Сергиев Посад"); u != "https://docs.google.com/spreadsheets/d/def/edit" {
		t.Errorf("URL = %q", u)
	}
}

package settings_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"v2s/internal/preset"
	"v2s/internal/settings"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := store.Get(); !reflect.DeepEqual(got, settings.Default()) {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestUpdatePersistsAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := settings.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := store.Update(func(s *settings.Settings) error {
		return settings.Apply(s, "model", "studio")
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	reopened := settings.NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reopened.Get(); got.Model != "studio" {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := settings.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	boom := errors.New("boom")
	if _, err := store.Update(func(s *settings.Settings) error {
		s.Model = "studio"
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected mutation error, got %v", err)
	}
	if got := store.Get(); got.Model != "standard" {
		t.Fatalf("failed update leaked: %+v", got)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("failed update should not write the file")
	}
}

func TestGetReturnsIsolatedCopies(t *testing.T) {
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := store.Update(func(s *settings.Settings) error {
		s.CustomPresets = []preset.Preset{{Name: "cinema", MaxChars: 60, MaxLines: 3}}
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	snapshot := store.Get()
	snapshot.CustomPresets[0].MaxChars = 1
	if store.Get().CustomPresets[0].MaxChars != 60 {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}

package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"v2s/internal/fileutil"
	"v2s/internal/preset"
)

// Store keeps the current settings in memory and mirrors every change to a
// JSON file. Get returns value copies, so a snapshot taken for a dispatched
// task is immune to later edits.
type Store struct {
	mu      sync.Mutex
	path    string
	current Settings
}

// NewStore creates a store persisting to path. Call Load before first use.
func NewStore(path string) *Store {
	return &Store{path: path, current: Default()}
}

// Load reads persisted settings, falling back to defaults when the file
// does not exist yet.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.current = Default()
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}
	loaded := Default()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("decode settings %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySettings(s.current)
}

// Update applies fn to a copy of the current settings and persists the
// result. The in-memory state changes only when both fn and the write
// succeed.
func (s *Store) Update(fn func(*Settings) error) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := copySettings(s.current)
	if err := fn(&next); err != nil {
		return copySettings(s.current), err
	}
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return copySettings(s.current), fmt.Errorf("encode settings: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0o644); err != nil {
		return copySettings(s.current), fmt.Errorf("write settings %s: %w", s.path, err)
	}
	s.current = next
	return copySettings(next), nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

func copySettings(in Settings) Settings {
	out := in
	if len(in.CustomPresets) > 0 {
		out.CustomPresets = make([]preset.Preset, len(in.CustomPresets))
		copy(out.CustomPresets, in.CustomPresets)
	}
	return out
}

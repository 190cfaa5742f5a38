package design

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"shirtforge/internal/logging"
)

// ErrNoState is returned by Storage.Load when nothing has been saved yet.
var ErrNoState = errors.New("design: no saved state")

// Storage is a durable home for one snapshot record.
type Storage interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// FileStorage keeps the snapshot as a JSON file.
type FileStorage struct {
	Path string
}

func (f FileStorage) Load() (Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, ErrNoState
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("design: read %s: %w", f.Path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("design: parse %s: %w", f.Path, err)
	}
	return snap, nil
}

// Save writes to a temporary file next to Path and renames it into place.
func (f FileStorage) Save(snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("design: marshal: %w", err)
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("design: mkdir %s: %w", dir, err)
		}
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("design: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("design: replace %s: %w", f.Path, err)
	}
	return nil
}

// LoadOrDefault reads the stored snapshot. A missing record yields the
// defaults silently; an unreadable one is logged and also yields defaults.
func LoadOrDefault(st Storage) Snapshot {
	snap, err := st.Load()
	if err == nil {
		return snap
	}
	if !errors.Is(err, ErrNoState) {
		logging.L().Warn("design: ignoring saved state", "err", err)
	}
	return DefaultState().Snapshot()
}

// SaveLayout writes the current colours and decals as a named layout.
func (s *Store) SaveLayout(st Storage) error {
	return st.Save(s.Snapshot())
}

// LoadLayout replaces the colours and decals with a saved layout. On any
// failure the store is left untouched and the error is logged and returned.
func (s *Store) LoadLayout(st Storage) error {
	snap, err := st.Load()
	if err != nil {
		logging.L().Warn("design: layout not loaded", "err", err)
		return err
	}
	s.ApplySnapshot(snap)
	return nil
}

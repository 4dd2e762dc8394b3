package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrisonrobin/workbench/pkg/model"
)

// Load replaces the state with the session snapshot at path. A missing file
// leaves the store empty.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	loaded := newState()
	if err := json.NewDecoder(f).Decode(&loaded); err != nil {
		return fmt.Errorf("failed to decode session %s: %w", path, err)
	}
	if loaded.Tasks == nil {
		loaded.Tasks = []model.Task{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = loaded
	s.dirty = false
	return nil
}

// Save writes the session snapshot to path if anything changed since the
// last Load or Save.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	if !s.dirty {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.state); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

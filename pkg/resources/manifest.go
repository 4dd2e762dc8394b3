package resources

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry is one remembered resource use.
type Entry struct {
	ID       string    `json:"id"`
	LastUsed time.Time `json:"last_used"`
}

// Manifest maps module ids to their recent resources, oldest first.
type Manifest map[string][]Entry

// LoadManifest reads the manifest at path. A missing file is an empty
// manifest.
func LoadManifest(path string) (Manifest, error) {
	m := Manifest{}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(m)
}

// Manifest exports the recency lists of every module.
func (m *Manager) Manifest() Manifest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(Manifest, len(m.recent))
	for moduleID, cache := range m.recent {
		keys := cache.Keys()
		entries := make([]Entry, 0, len(keys))
		for _, id := range keys {
			at, _ := cache.Peek(id)
			entries = append(entries, Entry{ID: id, LastUsed: at})
		}
		out[moduleID] = entries
	}
	return out
}

// Restore replays a manifest into the manager. Entries beyond the manager's
// capacity fall out oldest first.
func (m *Manager) Restore(manifest Manifest) error {
	for moduleID, entries := range manifest {
		for _, e := range entries {
			if err := m.touchAt(moduleID, e.ID, e.LastUsed); err != nil {
				return err
			}
		}
	}
	m.mu.Lock()
	m.dirty = false
	m.mu.Unlock()
	return nil
}

// SaveManifest writes the manifest to path if a resource was touched since
// the last Restore or SaveManifest.
func (m *Manager) SaveManifest(path string) error {
	m.mu.Lock()
	dirty := m.dirty
	m.mu.Unlock()
	if !dirty {
		return nil
	}
	if err := m.Manifest().Save(path); err != nil {
		return err
	}
	m.mu.Lock()
	m.dirty = false
	m.mu.Unlock()
	return nil
}

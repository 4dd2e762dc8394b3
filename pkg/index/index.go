package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Ref locates a mirrored task in Google Tasks.
type Ref struct {
	ListID string `json:"list_id"`
	TaskID string `json:"task_id"`
}

// MirrorIndex remembers which Google task list holds each bucket and which
// Google task mirrors each board task.
type MirrorIndex struct {
	Lists map[string]string `json:"lists"`
	Tasks map[string]Ref    `json:"tasks"`
	Path  string            `json:"-"`
	mu    sync.RWMutex
	dirty bool
}

func New(path string) (*MirrorIndex, error) {
	idx := &MirrorIndex{
		Lists: make(map[string]string),
		Tasks: make(map[string]Ref),
		Path:  path,
	}

	if path == "" {
		return idx, nil
	}
	if _, err := os.Stat(path); err == nil {
		if err := idx.Load(); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func (idx *MirrorIndex) Load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := json.NewDecoder(f).Decode(idx); err != nil {
		return err
	}
	if idx.Lists == nil {
		idx.Lists = make(map[string]string)
	}
	if idx.Tasks == nil {
		idx.Tasks = make(map[string]Ref)
	}
	return nil
}

func (idx *MirrorIndex) Save() error {
	idx.mu.RLock()
	if !idx.dirty || idx.Path == "" {
		idx.mu.RUnlock()
		return nil
	}
	idx.mu.RUnlock()

	idx.mu.Lock()
	defer idx.mu.Unlock()

	dir := filepath.Dir(idx.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.Create(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(idx); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *MirrorIndex) List(bucket string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Lists[bucket]
}

func (idx *MirrorIndex) SetList(bucket, listID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Lists[bucket] != listID {
		idx.Lists[bucket] = listID
		idx.dirty = true
	}
}

func (idx *MirrorIndex) Get(taskID string) (Ref, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ref, ok := idx.Tasks[taskID]
	return ref, ok
}

func (idx *MirrorIndex) Set(taskID string, ref Ref) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Tasks[taskID] != ref {
		idx.Tasks[taskID] = ref
		idx.dirty = true
	}
}

func (idx *MirrorIndex) Remove(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Tasks[taskID]; exists {
		delete(idx.Tasks, taskID)
		idx.dirty = true
	}
}

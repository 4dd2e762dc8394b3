package resources

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRecentSize is how many resources per module are remembered.
const DefaultRecentSize = 16

// Loader warms a single resource of a module.
type Loader interface {
	Load(ctx context.Context, moduleID, resourceID string) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, moduleID, resourceID string) error

func (f LoaderFunc) Load(ctx context.Context, moduleID, resourceID string) error {
	return f(ctx, moduleID, resourceID)
}

// Manager tracks which resources each module used recently and which of
// them are currently loaded.
type Manager struct {
	mu     sync.Mutex
	size   int
	loader Loader
	recent map[string]*lru.Cache[string, time.Time]
	loaded map[string]map[string]struct{}
	dirty  bool
}

func NewManager(size int, loader Loader) (*Manager, error) {
	if size <= 0 {
		size = DefaultRecentSize
	}
	if loader == nil {
		return nil, ErrLoaderNil
	}
	return &Manager{
		size:   size,
		loader: loader,
		recent: make(map[string]*lru.Cache[string, time.Time]),
		loaded: make(map[string]map[string]struct{}),
	}, nil
}

// Touch marks resourceID as just used by moduleID, evicting the least
// recently used entry once the module is over capacity.
func (m *Manager) Touch(moduleID, resourceID string) error {
	return m.touchAt(moduleID, resourceID, time.Now())
}

func (m *Manager) touchAt(moduleID, resourceID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cache, ok := m.recent[moduleID]
	if !ok {
		var err error
		cache, err = lru.New[string, time.Time](m.size)
		if err != nil {
			return fmt.Errorf("failed to create LRU cache: %w", err)
		}
		m.recent[moduleID] = cache
	}
	cache.Add(resourceID, at)
	m.dirty = true
	return nil
}

// Recent lists the recently used resources of moduleID, newest first.
func (m *Manager) Recent(moduleID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cache, ok := m.recent[moduleID]
	if !ok {
		return nil
	}
	keys := cache.Keys()
	slices.Reverse(keys)
	return keys
}

// Loaded lists the loaded resources of moduleID, sorted.
func (m *Manager) Loaded(moduleID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.loaded[moduleID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PreloadRecentResources loads the recent resources of moduleID, newest
// first, and returns the ids it loaded. It stops at the first failure or
// when ctx is done; resources loaded before that stay loaded.
func (m *Manager) PreloadRecentResources(ctx context.Context, moduleID string) ([]string, error) {
	var loaded []string
	for _, resourceID := range m.Recent(moduleID) {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}
		if err := m.loader.Load(ctx, moduleID, resourceID); err != nil {
			return loaded, fmt.Errorf("module %s: resource %s: %w", moduleID, resourceID, err)
		}
		m.markLoaded(moduleID, resourceID)
		loaded = append(loaded, resourceID)
	}
	return loaded, nil
}

func (m *Manager) markLoaded(moduleID, resourceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.loaded[moduleID]
	if !ok {
		set = make(map[string]struct{})
		m.loaded[moduleID] = set
	}
	set[resourceID] = struct{}{}
}

// EvictModuleResources drops everything loaded for moduleID. The recency
// list is kept so a later preload can warm the module again.
func (m *Manager) EvictModuleResources(moduleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.loaded, moduleID)
}

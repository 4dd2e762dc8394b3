package store

import (
	"maps"
	"slices"
	"sync"

	"github.com/harrisonrobin/workbench/pkg/model"
)

// State is the shared application state tree.
type State struct {
	// Tasks in insertion order.
	Tasks []model.Task `json:"tasks"`
	// ActiveModuleID is empty when no module is active.
	ActiveModuleID    string              `json:"activeModuleId"`
	LoadedResourceIDs map[string]struct{} `json:"-"`
}

func newState() State {
	return State{
		Tasks:             []model.Task{},
		LoadedResourceIDs: make(map[string]struct{}),
	}
}

func (s State) clone() State {
	c := State{
		Tasks:             make([]model.Task, len(s.Tasks)),
		ActiveModuleID:    s.ActiveModuleID,
		LoadedResourceIDs: maps.Clone(s.LoadedResourceIDs),
	}
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	if c.LoadedResourceIDs == nil {
		c.LoadedResourceIDs = make(map[string]struct{})
	}
	return c
}

// LoadedResources returns the tracked resource ids, sorted.
func (s State) LoadedResources() []string {
	return slices.Sorted(maps.Keys(s.LoadedResourceIDs))
}

// Task returns the task with the given id.
func (s State) Task(id string) (model.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Listener observes committed transitions. It receives a private copy.
type Listener func(State)

// Store owns the State. Every transition runs to completion under a single
// writer lock before the next one starts, and subscribers see each
// transition exactly once.
type Store struct {
	mu        sync.RWMutex
	state     State
	dirty     bool
	nextSubID int
	subs      map[int]Listener

	// notifyMu orders notifications the same way transitions were committed.
	notifyMu sync.Mutex
}

func New() *Store {
	return &Store{
		state: newState(),
		subs:  make(map[int]Listener),
	}
}

// Set applies update to the state as one transition.
// update must not call back into the Store.
func (s *Store) Set(update func(*State)) {
	s.Update(func(st *State) bool {
		update(st)
		return true
	})
}

// Update is Set for updates that may turn out to change nothing. When update
// returns false no transition is recorded and nobody is notified.
func (s *Store) Update(update func(*State) bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	subs, snapshot, ok := s.apply(update)
	if !ok {
		return
	}
	for _, fn := range subs {
		fn(snapshot.clone())
	}
}

func (s *Store) apply(update func(*State) bool) ([]Listener, State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !update(&s.state) {
		return nil, State{}, false
	}
	if s.state.LoadedResourceIDs == nil {
		s.state.LoadedResourceIDs = make(map[string]struct{})
	}
	s.dirty = true

	subs := slices.Collect(maps.Values(s.subs))
	if len(subs) == 0 {
		return nil, State{}, true
	}
	return subs, s.state.clone(), true
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn for every later transition and returns a function
// that removes it. fn runs synchronously after the transition and must not
// call Set.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

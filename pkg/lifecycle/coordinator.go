// Package lifecycle switches the active module of the workspace and keeps
// the module's cached resources in step with it.
package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/harrisonrobin/workbench/pkg/store"
)

// ResourceManager owns the cached resources of every module.
type ResourceManager interface {
	// EvictModuleResources releases what is cached for moduleID.
	EvictModuleResources(moduleID string)
	// PreloadRecentResources warms the resources moduleID used recently and
	// returns the ids it loaded. It may fail.
	PreloadRecentResources(ctx context.Context, moduleID string) ([]string, error)
}

// StateStore is the part of the shared store the coordinator drives.
type StateStore interface {
	Set(update func(*store.State))
	Update(update func(*store.State) bool)
	Snapshot() store.State
}

// Coordinator implements the active-module state machine.
type Coordinator struct {
	store     StateStore
	resources ResourceManager
	logger    *zap.Logger
	preloads  sync.WaitGroup
}

func New(st StateStore, resources ResourceManager, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{store: st, resources: resources, logger: logger}
}

// SetActiveModuleID makes moduleID the active module; "" means no module.
//
// When a different module was active, its resources are evicted and the
// loaded-resource set is cleared in the same transition that records the new
// id. Activating a module then starts a preload in the background and
// returns without waiting for it. Activating the module that is already
// active does nothing.
//
// In-flight preloads are never cancelled. A preload that finishes after
// another switch still records its resources.
func (c *Coordinator) SetActiveModuleID(ctx context.Context, moduleID string) {
	changed := false
	c.store.Update(func(st *store.State) bool {
		prev := st.ActiveModuleID
		if prev == moduleID {
			return false
		}
		if prev != "" {
			c.resources.EvictModuleResources(prev)
			clear(st.LoadedResourceIDs)
		}
		st.ActiveModuleID = moduleID
		changed = true
		return true
	})
	if !changed {
		return
	}
	c.logger.Debug("active module changed", zap.String("module", moduleID))
	if moduleID == "" {
		return
	}

	c.preloads.Add(1)
	go c.preload(context.WithoutCancel(ctx), moduleID)
}

// ActiveModuleID returns the recorded active module.
func (c *Coordinator) ActiveModuleID() string {
	return c.store.Snapshot().ActiveModuleID
}

// Wait blocks until every preload started so far has finished.
func (c *Coordinator) Wait() {
	c.preloads.Wait()
}

func (c *Coordinator) preload(ctx context.Context, moduleID string) {
	defer c.preloads.Done()

	ids, err := c.safePreload(ctx, moduleID)
	if err != nil {
		c.logger.Warn("failed to preload module resources",
			zap.String("module", moduleID),
			zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}
	c.store.Set(func(st *store.State) {
		for _, id := range ids {
			st.LoadedResourceIDs[id] = struct{}{}
		}
	})
}

func (c *Coordinator) safePreload(ctx context.Context, moduleID string) (ids []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("preload panicked: %v", r)
		}
	}()
	return c.resources.PreloadRecentResources(ctx, moduleID)
}

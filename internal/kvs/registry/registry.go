// Package registry shares one open engine.Kvs across every caller that
// opens the same (dir, instance id) pair, so distinct handles observe the
// same live map rather than independent copies. A registry-wide mutex
// guards handle creation and refcounting; the handle table itself is a
// cmap.Map, matching how the ambient stack's sharded map backs other
// concurrently-read registries.
package registry

import (
	"fmt"
	"sync"

	"github.com/kvsdriver/kvs/internal/kvs/engine"
	"github.com/kvsdriver/kvs/pkg/cmap"
)

// Handle is a shared reference to an open instance. Multiple Handles
// returned for the same key wrap the same *engine.Kvs.
type Handle struct {
	key  string
	refs int
	kvs  *engine.Kvs
}

// Kvs returns the underlying engine the handle shares with any other
// open Handles for the same instance.
func (h *Handle) Kvs() *engine.Kvs { return h.kvs }

// Registry maps (dir, instance id) to a shared, refcounted engine.Kvs.
type Registry struct {
	mu      sync.Mutex
	handles *cmap.Map[string, *Handle]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{handles: cmap.New[string, *Handle]()}
}

func instanceKey(dir string, instanceID uint32) string {
	return fmt.Sprintf("%s|%d", dir, instanceID)
}

// Open returns a Handle for p.Dir/p.InstanceID, opening a new engine.Kvs
// only if none is already registered for that pair. A second Open for the
// same pair returns a Handle sharing the first call's engine and
// increments its refcount; p's other fields are ignored on that path,
// since the instance is already open under whatever parameters created it.
func (r *Registry) Open(p engine.Params) (*Handle, error) {
	key := instanceKey(p.Dir, p.InstanceID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles.Get(key); ok {
		h.refs++
		return h, nil
	}

	kv, err := engine.Open(p)
	if err != nil {
		return nil, err
	}

	h := &Handle{key: key, refs: 1, kvs: kv}
	r.handles.Set(key, h)
	return h, nil
}

// Release decrements h's refcount. When the last reference is released,
// the underlying engine is dropped (flushing if it was opened with
// FlushOnExit) and removed from the registry.
func (r *Registry) Release(h *Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h.refs--
	if h.refs > 0 {
		return nil
	}

	r.handles.Pop(h.key)
	return h.kvs.Drop()
}

// Len reports how many distinct instances are currently open.
func (r *Registry) Len() int {
	return r.handles.Count()
}

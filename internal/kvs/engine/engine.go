// Package engine implements the KVS engine: the live map overlaying the
// read-only defaults, flush/restore against the snapshot ring, and the
// lifecycle (open, mutate, flush, drop) of a single instance. Every public
// operation is atomic with respect to the others on the same instance via
// a single mutex guarding the live map (not sharded — a single lock per
// instance is enough here, unlike the sharded pkg/cmap used by the
// instance registry).
package engine

import (
	"fmt"
	"os"
	"sync"

	"github.com/kvsdriver/kvs/internal/kvs/defaults"
	"github.com/kvsdriver/kvs/internal/kvs/kvserr"
	"github.com/kvsdriver/kvs/internal/kvs/snapshot"
	"github.com/kvsdriver/kvs/internal/kvs/value"
)

// Params describes how to open an instance.
type Params struct {
	InstanceID     uint32
	Dir            string
	DefaultsPolicy defaults.Policy
	FlushOnExit    bool
}

// Kvs is one open instance: a live map guarded by mu, overlaying a
// read-only Defaults, backed by a snapshot.Store for flush/restore.
type Kvs struct {
	mu          sync.Mutex
	params      Params
	live        map[string]value.Value
	defaults    *defaults.Defaults
	snapshots   *snapshot.Store
	flushOnExit bool
}

// Open loads defaults, ensures the storage directory exists, and attempts
// to hydrate the live map from generation 0. A missing, corrupt, or
// unverifiable generation 0 is not fatal: the live map simply starts
// empty. Only a failure to create the directory or a fatal defaults load
// (per defaults.Load's contract) fails Open.
func Open(p Params) (*Kvs, error) {
	if err := os.MkdirAll(p.Dir, 0o750); err != nil {
		return nil, kvserr.Wrap(kvserr.IoError, fmt.Sprintf("create directory %q", p.Dir), err)
	}

	d, err := defaults.Load(p.Dir, p.InstanceID, p.DefaultsPolicy)
	if err != nil {
		return nil, err
	}

	store := snapshot.NewStore(p.Dir, p.InstanceID)

	live := map[string]value.Value{}
	if m, err := store.Read(0); err == nil {
		live = m
	}

	return &Kvs{
		params:      p,
		live:        live,
		defaults:    d,
		snapshots:   store,
		flushOnExit: p.FlushOnExit,
	}, nil
}

// Get returns live[k] if present, else defaults[k], else KeyNotFound.
func (k *Kvs) Get(key string) (value.Value, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if v, ok := k.live[key]; ok {
		return v.Clone(), nil
	}
	return k.defaults.Get(key)
}

// GetDefault bypasses the live map and returns only from defaults.
func (k *Kvs) GetDefault(key string) (value.Value, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.defaults.Get(key)
}

// IsDefault reports Ok(true) if key is absent from live but present in
// defaults, Ok(false) if present in live, else KeyNotFound.
func (k *Kvs) IsDefault(key string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.live[key]; ok {
		return false, nil
	}
	if k.defaults.Has(key) {
		return true, nil
	}
	return false, kvserr.New(kvserr.KeyNotFound, fmt.Sprintf("key not found: %q", key))
}

// Set inserts or overwrites key in the live map, keeping v's exact tag.
func (k *Kvs) Set(key string, v value.Value) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.live[key] = v.Clone()
}

// Remove deletes key from the live map. A subsequent Get may still return
// the default, since the live map's absence of a key is what re-exposes
// the default — removal never writes a copy of the default back in.
func (k *Kvs) Remove(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.live, key)
}

// ResetKey removes key from live if present there. If key is absent from
// live but present in defaults, it is already at default and this is a
// no-op success. If absent from both, KeyNotFound.
func (k *Kvs) ResetKey(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.live[key]; ok {
		delete(k.live, key)
		return nil
	}
	if k.defaults.Has(key) {
		return nil
	}
	return kvserr.New(kvserr.KeyNotFound, fmt.Sprintf("key not found: %q", key))
}

// ResetAll clears the live map entirely.
func (k *Kvs) ResetAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.live = map[string]value.Value{}
}

// Flush serializes the live map and writes it as the new current
// generation, rotating older generations per the snapshot ring.
func (k *Kvs) Flush() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	_, _, err := k.snapshots.WriteCurrent(k.live)
	return err
}

// SnapshotCount returns the number of rotated generations currently on
// disk (g >= 1), capped at SnapshotMaxCount.
func (k *Kvs) SnapshotCount() uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return uint32(k.snapshots.Count())
}

// SnapshotMaxCount returns the compile-time rotation depth constant.
func (k *Kvs) SnapshotMaxCount() uint32 {
	return uint32(snapshot.MaxSnapshots)
}

// Restore replaces the live map with the decoded content of the given
// snapshot generation.
func (k *Kvs) Restore(snapshotID uint32) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if snapshotID == 0 {
		return kvserr.New(kvserr.InvalidSnapshotId, "tried to restore current KVS as snapshot")
	}
	if !k.snapshots.Exists(int(snapshotID)) {
		return kvserr.New(kvserr.InvalidSnapshotId, "tried to restore a non-existing snapshot")
	}

	m, err := k.snapshots.Read(int(snapshotID))
	if err != nil {
		return err
	}
	k.live = m
	return nil
}

// SnapshotPaths returns the payload and sidecar paths for a given
// generation, if both exist on disk.
func (k *Kvs) SnapshotPaths(snapshotID uint32) (payloadPath, hashPath string, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.snapshots.Paths(int(snapshotID))
}

// Drop releases the instance, flushing first if FlushOnExit was set at
// Open. Errors during that flush are surfaced to the caller rather than
// swallowed, so the driver can report a non-zero exit.
func (k *Kvs) Drop() error {
	if k.flushOnExit {
		return k.Flush()
	}
	return nil
}

// InstanceID returns the instance id this handle was opened with.
func (k *Kvs) InstanceID() uint32 { return k.params.InstanceID }

// Dir returns the storage directory this handle was opened with.
func (k *Kvs) Dir() string { return k.params.Dir }

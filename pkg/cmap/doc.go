// Package cmap provides a generic concurrent map implementation.
//
// This package implements a sharded concurrent map optimized for
// high-throughput lookups with the following features:
//
//   - Sharding: configurable shard count for parallelism
//   - Fine-grained locking: per-shard RWMutex for minimal contention
//   - Iteration: safe iteration while holding read locks
//
// Usage:
//
//	m := cmap.New[string, *Handle]()
//	m.Set("dir|instance_id", handle)
//	val, ok := m.Get("dir|instance_id")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap

// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are spread over a power-of-two number of shards with murmur3, and
// each shard is guarded by its own RWMutex:
//
//   - Get and Count take the shard read lock
//   - Set and DeleteIf take the shard write lock
//
// A write that has returned is visible to every later read of the same key.
// There is no cross-key atomicity.
//
// Usage:
//
//	m := cmap.New[string, entry]()
//	m.Set("key", e)
//	e, ok := m.Get("key")
package cmap

// Package memory provides the in-memory key-value store for replikv.
//
// Entries are string values with an optional absolute expiry in Unix
// milliseconds. Expiry is enforced only at read time:
//
//   - Get never returns an entry whose expiry is at or before now
//   - the Get that observes an expired entry also deletes it (lazy eviction)
//   - no background sweep runs
//
// Thread Safety:
//
// Entries live in a cmap.Map, so every operation takes only the lock of the
// key's shard. A Set that has returned is visible to any later Get.
package memory

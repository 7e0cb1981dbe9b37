// Package cache provides the bounded, concurrent validation cache used by
// the compliance gate.
//
// The cache maps a request fingerprint to a cached verdict. Every entry is
// tagged with the policy identity that produced it; an entry is returned
// from Get only when its tag matches the caller's identity snapshot and its
// TTL has not expired. Policy rotation therefore invalidates old entries
// lazily: they become unreachable immediately, and are physically removed on
// the next access or by an explicit InvalidateAll sweep.
//
// Internally the cache is sharded. Each shard holds an independent LRU list
// and map under its own mutex, so lookups on unrelated keys never contend
// and eviction on one shard never blocks lookups on another. Total capacity
// is a hard bound: the shards' capacities always sum to exactly the
// configured capacity, and inserting into a full shard evicts exactly one
// least-recently-used entry.
package cache

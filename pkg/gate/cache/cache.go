package cache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"time"
)

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithShards sets the shard count. The count is rounded down to a power of
// two and never exceeds the capacity, so the per-shard capacity is at least
// one entry.
func WithShards[V any](n int) Option[V] {
	return func(c *Cache[V]) {
		c.shardCount = n
	}
}

// WithEvictionHook registers a callback invoked once per capacity or
// staleness eviction. The callback runs with a shard lock held and must be
// cheap; it exists to feed an eviction counter.
func WithEvictionHook[V any](fn func()) Option[V] {
	return func(c *Cache[V]) {
		c.onEvict = fn
	}
}

// entry is a single cached verdict. Owned exclusively by the cache.
type entry[V any] struct {
	fingerprint string
	identity    string
	value       V
	computedAt  time.Time
	expiresAt   time.Time
}

// shard is an independent LRU segment with its own lock.
type shard[V any] struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// Cache is a bounded, sharded, identity-tagged LRU cache.
type Cache[V any] struct {
	shards     []*shard[V]
	mask       uint32
	capacity   int
	shardCount int
	onEvict    func()
	now        func() time.Time
}

// DefaultShards is the shard count used when none is configured.
const DefaultShards = 16

// New creates a cache with the given total capacity.
func New[V any](capacity int, opts ...Option[V]) *Cache[V] {
	if capacity < 1 {
		capacity = 1
	}

	c := &Cache[V]{
		capacity:   capacity,
		shardCount: DefaultShards,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	n := c.shardCount
	if n < 1 {
		n = 1
	}
	// Round down to a power of two no larger than the capacity, so every
	// shard gets at least one slot and masking selects shards uniformly.
	for n > capacity {
		n >>= 1
	}
	for n&(n-1) != 0 {
		n &= n - 1
	}
	c.shardCount = n
	c.mask = uint32(n - 1)

	// Distribute capacity exactly: the first capacity%n shards take one
	// extra slot so the shard capacities sum to the configured bound.
	base := capacity / n
	extra := capacity % n
	c.shards = make([]*shard[V], n)
	for i := range c.shards {
		cap := base
		if i < extra {
			cap++
		}
		c.shards[i] = &shard[V]{
			capacity: cap,
			ll:       list.New(),
			items:    make(map[string]*list.Element),
		}
	}
	return c
}

// shardFor selects the shard for a fingerprint.
func (c *Cache[V]) shardFor(fingerprint string) *shard[V] {
	h := fnv.New32a()
	h.Write([]byte(fingerprint))
	return c.shards[h.Sum32()&c.mask]
}

// Get returns the cached verdict for the fingerprint, but only if the entry
// was computed under the given policy identity and its TTL has not expired.
// A present-but-stale entry (wrong identity or expired) is removed and Get
// reports a miss.
func (c *Cache[V]) Get(fingerprint, identity string) (V, bool) {
	var zero V
	s := c.shardFor(fingerprint)

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[fingerprint]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[V])
	if e.identity != identity || c.now().After(e.expiresAt) {
		s.remove(elem)
		if c.onEvict != nil {
			c.onEvict()
		}
		return zero, false
	}

	s.ll.MoveToFront(elem)
	return e.value, true
}

// Put inserts or overwrites the verdict for a fingerprint. When the shard is
// at capacity, exactly one least-recently-used entry is evicted to make
// room.
func (c *Cache[V]) Put(fingerprint, identity string, value V, ttl time.Duration) {
	s := c.shardFor(fingerprint)
	now := c.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[fingerprint]; ok {
		e := elem.Value.(*entry[V])
		e.identity = identity
		e.value = value
		e.computedAt = now
		e.expiresAt = now.Add(ttl)
		s.ll.MoveToFront(elem)
		return
	}

	if s.ll.Len() >= s.capacity {
		if back := s.ll.Back(); back != nil {
			s.remove(back)
			if c.onEvict != nil {
				c.onEvict()
			}
		}
	}

	elem := s.ll.PushFront(&entry[V]{
		fingerprint: fingerprint,
		identity:    identity,
		value:       value,
		computedAt:  now,
		expiresAt:   now.Add(ttl),
	})
	s.items[fingerprint] = elem
}

// InvalidateAll removes entries that were not computed under the given
// identity. Correctness never depends on this sweep: Get already excludes
// mismatched entries. The sweep reclaims capacity after a rotation, one
// shard at a time, so lookups on other shards proceed concurrently.
// It returns the number of entries removed.
func (c *Cache[V]) InvalidateAll(identity string) int {
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for elem := s.ll.Front(); elem != nil; {
			next := elem.Next()
			if elem.Value.(*entry[V]).identity != identity {
				s.remove(elem)
				removed++
				if c.onEvict != nil {
					c.onEvict()
				}
			}
			elem = next
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the current number of cached entries, including entries that
// are stale but not yet lazily removed.
func (c *Cache[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.ll.Len()
		s.mu.Unlock()
	}
	return n
}

// Capacity returns the configured maximum entry count.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Shards returns the effective shard count after rounding.
func (c *Cache[V]) Shards() int {
	return c.shardCount
}

// remove deletes an element from the shard. Caller holds the shard lock.
func (s *shard[V]) remove(elem *list.Element) {
	e := elem.Value.(*entry[V])
	s.ll.Remove(elem)
	delete(s.items, e.fingerprint)
}

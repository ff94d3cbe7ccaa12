// Package cache provides the exact-match in-process caches used by the
// request pipeline. Entries live for the lifetime of the process and are
// never evicted; instances are injected into the components that need
// them rather than shared as package state.
package cache

import (
	"sync"
	"sync/atomic"
)

// Stats reports cache effectiveness counters.
type Stats struct {
	Entries int64
	Hits    int64
	Misses  int64
}

// Cache is a concurrency-safe string-keyed map. Writes to the same key are
// last-write-wins, which is acceptable because values for an identical key
// are computed identically.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates an empty Cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// Get retrieves the value stored under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	value, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return value, ok
}

// Put stores value under key, replacing any previous entry.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
}

// Len returns the number of stored entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache performance counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Entries: int64(c.Len()),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Clear removes all entries. Hit and miss counters are preserved.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]V)
	c.mu.Unlock()
}

// Package cache implements a bounded, thread-safe, recency-ordered cache
// used by the Pattern Engine and the Query Generator.
//
// Grounded on pkg/state/memory_cache.go's locking/atomics/Stats shape, but
// corrects that implementation's eviction policy: memory_cache.go's
// evictLRU actually evicts the entry with the lowest access count (an
// LFU-like policy), not the least-recently-used one. This package tracks
// true recency via container/list, per DESIGN.md.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// Stats reports point-in-time cache counters.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns Hits / (Hits + Misses), or 0 if the cache has never been
// queried.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry struct {
	key       string
	value     interface{}
	expiresAt time.Time
	elem      *list.Element
}

// LRU is a bounded, recency-ordered cache with optional per-entry TTL.
type LRU struct {
	mu         sync.Mutex
	maxEntries int
	defaultTTL time.Duration
	entries    map[string]*entry
	order      *list.List // front = most recently used

	hits      int64
	misses    int64
	evictions int64
}

// New constructs an LRU bounded to maxEntries, with defaultTTL applied to
// entries set without an explicit TTL (zero means no expiry).
func New(maxEntries int, defaultTTL time.Duration) *LRU {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &LRU{
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*entry),
		order:      list.New(),
	}
}

// Get returns the cached value for key and bumps its recency, or (nil,
// false) if absent or expired.
func (c *LRU) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.removeLocked(e)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	c.order.MoveToFront(e.elem)
	atomic.AddInt64(&c.hits, 1)
	return e.value, true
}

// Set inserts or updates key, using the cache's default TTL. Inserting
// evicts the least-recently-used entry if the cache is at capacity.
func (c *LRU) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL inserts or updates key with an explicit TTL (zero means no
// expiry).
func (c *LRU) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(e.elem)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	e.elem = c.order.PushFront(e)
	c.entries[key] = e

	if len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
}

// Delete removes key, if present.
func (c *LRU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.removeLocked(e)
	}
}

// Clear empties the cache.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.order.Init()
}

// Len returns the current entry count.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache's counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()
	return Stats{
		Size:      size,
		MaxSize:   c.maxEntries,
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
	}
}

// evictOldest removes the least-recently-used entry. Caller must hold mu.
func (c *LRU) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry)
	c.removeLocked(e)
	atomic.AddInt64(&c.evictions, 1)
}

// removeLocked removes e from both the map and the recency list. Caller
// must hold mu.
func (c *LRU) removeLocked(e *entry) {
	delete(c.entries, e.key)
	c.order.Remove(e.elem)
}

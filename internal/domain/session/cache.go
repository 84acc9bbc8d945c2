// Package session holds analysis results between the upload call and the
// report downloads. The cache is an explicit handle passed into the service,
// not ambient state: a new upload for the same student gets a fresh ID and
// the old entry is invalidated explicitly.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry wraps one cached value with its bookkeeping.
type Entry[T any] struct {
	Value     T
	CreatedAt time.Time
}

// Cache is a concurrency-safe in-memory store keyed by transcript ID.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry[T]
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache. A zero ttl means entries never expire.
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		entries: make(map[uuid.UUID]Entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores a value under a fresh ID and returns the ID.
func (c *Cache[T]) Put(value T) uuid.UUID {
	id := uuid.New()
	c.Set(id, value)
	return id
}

// Set stores a value under an existing ID, replacing any previous entry.
func (c *Cache[T]) Set(id uuid.UUID, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = Entry[T]{Value: value, CreatedAt: c.now()}
}

// Get returns the cached value, expiring it lazily when past its TTL.
func (c *Cache[T]) Get(id uuid.UUID) (T, bool) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		var zero T
		return zero, false
	}
	if c.ttl > 0 && c.now().Sub(entry.CreatedAt) > c.ttl {
		c.Invalidate(id)
		var zero T
		return zero, false
	}
	return entry.Value, true
}

// Invalidate drops one entry. Dropping an absent ID is a no-op.
func (c *Cache[T]) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Sweep removes every expired entry and returns how many were dropped.
// It is the eager counterpart to Get's lazy expiry, for callers that want
// memory back without waiting for the next lookup.
func (c *Cache[T]) Sweep() int {
	if c.ttl <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for id, entry := range c.entries {
		if now.Sub(entry.CreatedAt) > c.ttl {
			delete(c.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of live entries, expired ones included until their
// next Get.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Package memory provides a generic in-process TTL cache used to avoid
// redundant upstream calls within a short window. Expiration is evaluated
// lazily at read time; there is no background sweep. Keys are scoped by
// source and identity (e.g. "tokens_0xabc...", "protocols_0xabc..."), so
// a cache instance must not be shared across tenants.
package memory

import (
	"sync"
	"time"
)

// Entry is a cached value together with its age at read time.
type Entry[T any] struct {
	Data T
	Age  time.Duration
}

type item[T any] struct {
	data      T
	storedAt  time.Time
	expiresAt time.Time
}

// Cache is a TTL key-value store safe for concurrent use. The zero value
// is not usable; construct with New.
type Cache[T any] struct {
	mu    sync.Mutex
	items map[string]item[T]
	now   func() time.Time
}

// New returns an empty Cache using the wall clock.
func New[T any]() *Cache[T] {
	return NewWithClock[T](time.Now)
}

// NewWithClock returns an empty Cache using the given clock. Tests inject
// a fake clock to simulate TTL expiry without sleeping.
func NewWithClock[T any](now func() time.Time) *Cache[T] {
	return &Cache[T]{
		items: make(map[string]item[T]),
		now:   now,
	}
}

// Get returns the cached entry for key, or ok=false when the key is
// absent or has expired. Expired entries are removed on read.
func (c *Cache[T]) Get(key string) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		return Entry[T]{}, false
	}

	now := c.now()
	if now.After(it.expiresAt) {
		delete(c.items, key)
		return Entry[T]{}, false
	}

	return Entry[T]{Data: it.data, Age: now.Sub(it.storedAt)}, true
}

// Set stores data under key with the given TTL, replacing any previous
// entry.
func (c *Cache[T]) Set(key string, data T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.items[key] = item[T]{
		data:      data,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
}

// Delete removes a single key.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear drops every entry. This is an explicit operation for manual
// refresh and test isolation; it is never fired automatically.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item[T])
}

// Len returns the number of stored entries, including ones that have
// expired but not yet been read.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

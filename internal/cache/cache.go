// Package cache holds refreshed feed results in memory for a fixed TTL.
package cache

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// KeySeparator joins the sorted subscription URLs of a cache key.
const KeySeparator = "|"

type entry[T any] struct {
	items    []T
	cachedAt time.Time
}

// Cache maps a subscription set to the items of its last successful
// refresh. Entries expire on read once they are ttl old; nothing is
// evicted otherwise and nothing is persisted.
type Cache[T any] struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]entry[T]
}

type Option[T any] func(*Cache[T])

// WithClock replaces time.Now, mainly for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		c.now = now
	}
}

func New[T any](ttl time.Duration, opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key sorts a copy of urls and joins them, so the same set of
// subscriptions maps to the same entry regardless of order.
func Key(urls []string) string {
	sorted := slices.Clone(urls)
	slices.Sort(sorted)
	return strings.Join(sorted, KeySeparator)
}

func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// Get returns a copy of the cached items for urls while the entry is
// younger than the TTL.
func (c *Cache[T]) Get(urls []string) ([]T, bool) {
	key := Key(urls)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.cachedAt) >= c.ttl {
		return nil, false
	}
	return slices.Clone(e.items), true
}

// Put replaces the entry for urls.
func (c *Cache[T]) Put(urls []string, items []T) {
	key := Key(urls)
	e := entry[T]{items: slices.Clone(items), cachedAt: c.now()}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Invalidate drops the entry for urls, if any.
func (c *Cache[T]) Invalidate(urls []string) {
	key := Key(urls)

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

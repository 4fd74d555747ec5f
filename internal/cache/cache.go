// Package cache keeps recent analysis results in memory.
package cache

import (
	"fmt"
	"time"

	"github.com/maypok86/otter"
)

// Cache is a bounded, optionally expiring map from content keys to results.
// It is safe for concurrent use.
type Cache[V any] struct {
	store otter.Cache[string, V]
}

// New creates a cache holding up to capacity entries. A zero ttl keeps
// entries until they are evicted by size.
func New[V any](capacity int, ttl time.Duration) (*Cache[V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}

	builder := otter.MustBuilder[string, V](capacity).CollectStats()

	var (
		store otter.Cache[string, V]
		err   error
	)
	if ttl > 0 {
		store, err = builder.WithTTL(ttl).Build()
	} else {
		store, err = builder.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build cache: %w", err)
	}
	return &Cache[V]{store: store}, nil
}

// Get returns the value stored under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.store.Get(key)
}

// Set stores value under key.
func (c *Cache[V]) Set(key string, value V) {
	c.store.Set(key, value)
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.store.Delete(key)
}

// Stats reports hit and miss counters.
func (c *Cache[V]) Stats() (hits, misses int64) {
	s := c.store.Stats()
	return s.Hits(), s.Misses()
}

// Close stops the cache's background workers.
func (c *Cache[V]) Close() {
	c.store.Close()
}

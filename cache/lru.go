package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache is a fixed-capacity cache with least-recently-used eviction.
type LRUCache[K comparable, V any] struct {
	capacity int
	entries  *lru.Cache[K, V]
}

// NewLRUCache creates a cache holding at most capacity entries.
// A capacity of zero or less returns ErrInvalidCapacity.
func NewLRUCache[K comparable, V any](capacity int) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	entries, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, fmt.Errorf("cache: create lru: %w", err)
	}

	return &LRUCache[K, V]{
		capacity: capacity,
		entries:  entries,
	}, nil
}

// Get returns the cached value and marks it most-recently-used.
func (c *LRUCache[K, V]) Get(_ context.Context, key K) (V, bool) {
	return c.entries.Get(key)
}

// Set stores value under key. When the cache is full the least-recently-used
// entry is evicted.
func (c *LRUCache[K, V]) Set(_ context.Context, key K, value V) bool {
	return c.entries.Add(key, value)
}

// Delete removes key from the cache.
func (c *LRUCache[K, V]) Delete(_ context.Context, key K) {
	c.entries.Remove(key)
}

// Len returns the number of cached entries.
func (c *LRUCache[K, V]) Len() int {
	return c.entries.Len()
}

// Capacity returns the configured maximum entry count.
func (c *LRUCache[K, V]) Capacity() int {
	return c.capacity
}

// Contains reports whether key is cached without updating its recency.
func (c *LRUCache[K, V]) Contains(key K) bool {
	return c.entries.Contains(key)
}

// Keys returns the cached keys from least to most recently used.
func (c *LRUCache[K, V]) Keys() []K {
	return c.entries.Keys()
}

var _ Cache[string, []byte] = (*LRUCache[string, []byte])(nil)

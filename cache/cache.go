package cache

import (
	"context"
	"errors"
)

// Sentinel errors for cache operations.
var (
	ErrNilCache        = errors.New("cache: cache is nil")
	ErrInvalidCapacity = errors.New("cache: capacity must be positive")
)

// Cache is a bounded key/value store for memoized results.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (zero, false) on miss.
// - Recency: a successful Get marks the entry most-recently-used.
type Cache[K comparable, V any] interface {
	// Get retrieves a cached value. Returns (zero, false) on miss.
	Get(ctx context.Context, key K) (V, bool)

	// Set stores a value, marking it most-recently-used. It reports whether
	// an older entry was evicted to make room.
	Set(ctx context.Context, key K, value V) (evicted bool)

	// Delete removes a cached value. Idempotent - no effect on miss.
	Delete(ctx context.Context, key K)

	// Len returns the number of cached entries.
	Len() int
}

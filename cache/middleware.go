package cache

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// LoaderFunc computes the value for key on a cache miss. Values are cached
// whatever they hold; a non-nil error is returned to the caller and nothing
// is stored.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Recorder observes cache activity. observe.Metrics satisfies it.
type Recorder interface {
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordCacheEviction(ctx context.Context)
}

// Stats is a point-in-time snapshot of Middleware activity.
type Stats struct {
	Hits      int64
	Misses    int64
	Loads     int64
	Evictions int64
	Size      int
}

// Middleware wraps a loader with cache-aside memoization.
type Middleware[K comparable, V any] struct {
	cache    Cache[K, V]
	keyer    Keyer[K]
	recorder Recorder
	group    singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	loads     atomic.Int64
	evictions atomic.Int64
}

// NewMiddleware creates a cache middleware.
// If keyer is nil, DefaultKeyer is used. recorder may be nil.
func NewMiddleware[K comparable, V any](cache Cache[K, V], keyer Keyer[K], recorder Recorder) *Middleware[K, V] {
	if cache == nil {
		cache = NopCache[K, V]{}
	}
	if keyer == nil {
		keyer = DefaultKeyer[K]{}
	}
	return &Middleware[K, V]{
		cache:    cache,
		keyer:    keyer,
		recorder: recorder,
	}
}

// Execute returns the cached value for key, or calls load and caches its
// result. Concurrent misses for the same key share one call to load.
// Errors are not cached.
func (m *Middleware[K, V]) Execute(ctx context.Context, key K, load LoaderFunc[K, V]) (V, error) {
	if v, ok := m.cache.Get(ctx, key); ok {
		m.hits.Add(1)
		if m.recorder != nil {
			m.recorder.RecordCacheHit(ctx)
		}
		return v, nil
	}

	m.misses.Add(1)
	if m.recorder != nil {
		m.recorder.RecordCacheMiss(ctx)
	}

	v, err, _ := m.group.Do(m.keyer.Key(key), func() (any, error) {
		m.loads.Add(1)
		value, err := load(ctx, key)
		if err != nil {
			return value, err
		}
		if m.cache.Set(ctx, key, value) {
			m.evictions.Add(1)
			if m.recorder != nil {
				m.recorder.RecordCacheEviction(ctx)
			}
		}
		return value, nil
	})
	value, _ := v.(V)
	return value, err
}

// Stats returns counters accumulated since construction.
func (m *Middleware[K, V]) Stats() Stats {
	return Stats{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Loads:     m.loads.Load(),
		Evictions: m.evictions.Load(),
		Size:      m.cache.Len(),
	}
}

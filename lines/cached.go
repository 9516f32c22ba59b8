package lines

import (
	"context"

	"github.com/jonwraymond/lineserve/cache"
)

// NewCache creates the result cache middleware for line lookups.
// A capacity of zero or less is rejected with cache.ErrInvalidCapacity.
func NewCache(policy cache.Policy, recorder cache.Recorder) (*cache.Middleware[int, Result], error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	c, err := cache.NewLRUCache[int, Result](policy.Capacity)
	if err != nil {
		return nil, err
	}
	return cache.NewMiddleware[int, Result](c, nil, recorder), nil
}

// Cached memoizes next through mw. Absent results are memoized as well, so
// repeated lookups of an out-of-range index stay off the disk. Results
// carrying Err are passed through and not stored.
func Cached(next Lookuper, mw *cache.Middleware[int, Result]) Lookuper {
	load := func(ctx context.Context, index int) (Result, error) {
		res := next.Lookup(ctx, index)
		return res, res.Err
	}
	return LookupFunc(func(ctx context.Context, index int) Result {
		res, err := mw.Execute(ctx, index, load)
		if err != nil {
			return Unavailable(err)
		}
		return res
	})
}

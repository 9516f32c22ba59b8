package lines

import (
	"context"

	"github.com/jonwraymond/lineserve/resilience"
)

// Limit runs next while holding a bulkhead slot, capping the number of
// lookups that have the file open. When no slot is free the result is
// Unavailable with resilience.ErrBulkheadFull, or with ctx.Err() if the
// caller gave up first.
//
// Compose it beneath Cached so that hits never take a slot.
func Limit(next Lookuper, bh *resilience.Bulkhead) Lookuper {
	return LookupFunc(func(ctx context.Context, index int) Result {
		var res Result
		err := bh.Execute(ctx, func(ctx context.Context) error {
			res = next.Lookup(ctx, index)
			return nil
		})
		if err != nil {
			return Unavailable(err)
		}
		return res
	})
}

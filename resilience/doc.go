// Package resilience bounds how much work the line server takes on at once.
//
// A Bulkhead caps the number of lookups in flight. It is applied beneath
// the result cache, where each lookup opens the served file, so the cap is
// also a cap on open file descriptors. Callers that cannot get a slot are
// rejected with ErrBulkheadFull rather than queued without limit.
//
//	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 256})
//	err := b.Execute(ctx, func(ctx context.Context) error {
//	    res = reader.Lookup(ctx, i)
//	    return nil
//	})
package resilience

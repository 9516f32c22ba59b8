package lines

import (
	"context"
	"time"

	"github.com/jonwraymond/lineserve/observe"
)

// Instrument wraps next with a span, lookup metrics and a debug log entry
// per call. Unavailable results are logged at warn level and left out of
// the lookup metrics. Nil arguments fall back to no-op implementations.
func Instrument(next Lookuper, tracer observe.Tracer, metrics observe.Metrics, logger observe.Logger, path string) Lookuper {
	if tracer == nil {
		tracer = observe.NewNoopTracer()
	}
	if metrics == nil {
		metrics = observe.NewNoopMetrics()
	}
	if logger == nil {
		logger = observe.NewNoopLogger()
	}

	return LookupFunc(func(ctx context.Context, index int) Result {
		ctx, span := tracer.StartSpan(ctx, observe.LookupMeta{Index: index, Path: path})
		start := time.Now()

		res := next.Lookup(ctx, index)
		if res.Err != nil {
			span.RecordError(res.Err)
			tracer.EndSpan(span, false)
			logger.Warn(ctx, "line lookup not attempted",
				observe.F("line.index", index),
				observe.F("error", res.Err),
			)
			return res
		}

		elapsed := time.Since(start)
		metrics.RecordLookup(ctx, res.Found, elapsed)
		tracer.EndSpan(span, res.Found)
		logger.Debug(ctx, "line lookup",
			observe.F("line.index", index),
			observe.F("line.found", res.Found),
			observe.F("duration_ms", float64(elapsed.Microseconds())/1000),
		)
		return res
	})
}

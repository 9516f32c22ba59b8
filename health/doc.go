// Package health reports whether the line server can answer lookups.
//
// A Checker inspects one component and returns a Result with a Status of
// Healthy, Degraded or Unhealthy. An Aggregator runs every registered
// Checker concurrently under a shared deadline and folds the results into
// one overall Status.
//
// The HTTP handlers expose the aggregate to orchestrators:
//
//	agg := health.NewAggregator()
//	agg.Register(lines.NewIndexChecker(ix))
//	health.RegisterHandlers(mux, agg)
//
// /healthz answers as long as the process runs. /readyz and /health answer
// 503 when any check is unhealthy; a degraded check still answers 200.
package health

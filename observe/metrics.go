package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records line-serving metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records one line lookup with its outcome and duration.
	RecordLookup(ctx context.Context, found bool, duration time.Duration)

	// RecordCacheHit records a result served from the cache.
	RecordCacheHit(ctx context.Context)

	// RecordCacheMiss records a lookup that fell through to the reader.
	RecordCacheMiss(ctx context.Context)

	// RecordCacheEviction records a least-recently-used eviction.
	RecordCacheEviction(ctx context.Context)

	// RecordIndexBuild records the outcome of the one-time index scan.
	RecordIndexBuild(ctx context.Context, lines int, bytes int64, duration time.Duration)
}

type metricsImpl struct {
	lookupTotal    metric.Int64Counter
	lookupAbsent   metric.Int64Counter
	lookupDuration metric.Float64Histogram
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheEvictions metric.Int64Counter
	indexLines     metric.Int64Gauge
	indexBytes     metric.Int64Gauge
	indexBuildMs   metric.Float64Gauge
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.lookupTotal, err = meter.Int64Counter(
		"lines.lookup.total",
		metric.WithDescription("Total number of line lookups"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	if m.lookupAbsent, err = meter.Int64Counter(
		"lines.lookup.absent",
		metric.WithDescription("Line lookups that returned no line"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	if m.lookupDuration, err = meter.Float64Histogram(
		"lines.lookup.duration_ms",
		metric.WithDescription("Line lookup duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.cacheHits, err = meter.Int64Counter(
		"lines.cache.hits",
		metric.WithDescription("Lookups served from the result cache"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	if m.cacheMisses, err = meter.Int64Counter(
		"lines.cache.misses",
		metric.WithDescription("Lookups not found in the result cache"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	if m.cacheEvictions, err = meter.Int64Counter(
		"lines.cache.evictions",
		metric.WithDescription("Entries evicted from the result cache"),
		metric.WithUnit("{entry}"),
	); err != nil {
		return nil, err
	}

	if m.indexLines, err = meter.Int64Gauge(
		"lines.index.lines",
		metric.WithDescription("Line terminators recorded by the index"),
		metric.WithUnit("{line}"),
	); err != nil {
		return nil, err
	}

	if m.indexBytes, err = meter.Int64Gauge(
		"lines.index.bytes",
		metric.WithDescription("Bytes scanned while building the index"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}

	if m.indexBuildMs, err = meter.Float64Gauge(
		"lines.index.build_ms",
		metric.WithDescription("Index build duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordLookup(ctx context.Context, found bool, duration time.Duration) {
	opt := metric.WithAttributes(attribute.Bool("line.found", found))

	m.lookupTotal.Add(ctx, 1, opt)
	if !found {
		m.lookupAbsent.Add(ctx, 1)
	}
	m.lookupDuration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordCacheHit(ctx context.Context) {
	m.cacheHits.Add(ctx, 1)
}

func (m *metricsImpl) RecordCacheMiss(ctx context.Context) {
	m.cacheMisses.Add(ctx, 1)
}

func (m *metricsImpl) RecordCacheEviction(ctx context.Context) {
	m.cacheEvictions.Add(ctx, 1)
}

func (m *metricsImpl) RecordIndexBuild(ctx context.Context, lines int, bytes int64, duration time.Duration) {
	m.indexLines.Record(ctx, int64(lines))
	m.indexBytes.Record(ctx, bytes)
	m.indexBuildMs.Record(ctx, float64(duration.Microseconds())/1000)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that records nothing.
func NewNoopMetrics() Metrics {
	return noopMetrics{}
}

func (noopMetrics) RecordLookup(context.Context, bool, time.Duration)           {}
func (noopMetrics) RecordCacheHit(context.Context)                              {}
func (noopMetrics) RecordCacheMiss(context.Context)                             {}
func (noopMetrics) RecordCacheEviction(context.Context)                         {}
func (noopMetrics) RecordIndexBuild(context.Context, int, int64, time.Duration) {}

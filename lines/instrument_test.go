package lines

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/lineserve/cache"
	"github.com/jonwraymond/lineserve/observe"
)

func counterTotal(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestInstrument_RecordsSpansAndMetrics(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observe.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	var logs bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &logs)

	r, _ := buildReader(t, fourLines)
	mw, err := NewCache(cache.Policy{Capacity: 8}, metrics)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	l := Instrument(Cached(r, mw), observe.NewTracer(tp.Tracer("test")), metrics, logger, r.Index().Path())
	ctx := context.Background()

	l.Lookup(ctx, 0)
	l.Lookup(ctx, 0)
	l.Lookup(ctx, 9)

	ended := spans.Ended()
	if len(ended) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(ended))
	}
	var found []bool
	for _, s := range ended {
		for _, kv := range s.Attributes() {
			if kv.Key == attribute.Key("line.found") {
				found = append(found, kv.Value.AsBool())
			}
		}
	}
	if len(found) != 3 || !found[0] || !found[1] || found[2] {
		t.Errorf("line.found attributes = %v, want [true true false]", found)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	checks := map[string]int64{
		"lines.lookup.total":  3,
		"lines.lookup.absent": 1,
		"lines.cache.hits":    1,
		"lines.cache.misses":  2,
	}
	for name, want := range checks {
		if got := counterTotal(t, rm, name); got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}

	if strings.Count(logs.String(), `"msg":"line lookup"`) != 3 {
		t.Errorf("expected 3 lookup log entries, got %q", logs.String())
	}
}

func TestInstrument_UnavailableLeftOutOfLookupMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observe.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	var logs bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &logs)

	errBusy := errors.New("busy")
	busy := LookupFunc(func(context.Context, int) Result { return Unavailable(errBusy) })
	l := Instrument(busy, nil, metrics, logger, "")
	ctx := context.Background()

	if got := l.Lookup(ctx, 2); !errors.Is(got.Err, errBusy) {
		t.Fatalf("Lookup(2) = %+v, want Err %v", got, errBusy)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got := counterTotal(t, rm, "lines.lookup.total"); got != 0 {
		t.Errorf("lines.lookup.total = %d, want 0", got)
	}
	if !strings.Contains(logs.String(), `"msg":"line lookup not attempted"`) {
		t.Errorf("expected a warn entry, got %q", logs.String())
	}
}

func TestInstrument_NilDependencies(t *testing.T) {
	r, _ := buildReader(t, fourLines)
	l := Instrument(r, nil, nil, nil, "")

	if got := l.Lookup(context.Background(), 3); got != Present("Last.") {
		t.Errorf("Lookup(3) = %+v", got)
	}
}

func TestBuild_RecordsIndexMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observe.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	var logs bytes.Buffer

	_, err = Build(context.Background(), writeFile(t, fourLines), BuildConfig{
		Logger:  observe.NewLoggerWithWriter("info", &logs),
		Metrics: metrics,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var lines int64 = -1
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "lines.index.lines" {
				g := m.Data.(metricdata.Gauge[int64])
				lines = g.DataPoints[0].Value
			}
		}
	}
	if lines != 4 {
		t.Errorf("lines.index.lines = %d, want 4", lines)
	}
	if !strings.Contains(logs.String(), "index build completed") {
		t.Errorf("expected completion log, got %q", logs.String())
	}
}

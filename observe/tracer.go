package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// LookupSpanName is the span name used for every line lookup.
const LookupSpanName = "lines.lookup"

// LookupMeta describes a single line lookup for telemetry purposes.
type LookupMeta struct {
	Index int    // Requested zero-based line index
	Path  string // Served file (optional)
}

// Tracer wraps OpenTelemetry tracing with lookup-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a lookup.
	StartSpan(ctx context.Context, meta LookupMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording whether a line was found.
	EndSpan(span trace.Span, found bool)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta LookupMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.Int("line.index", meta.Index),
	}
	if meta.Path != "" {
		attrs = append(attrs, attribute.String("file.path", meta.Path))
	}

	return t.tracer.Start(ctx, LookupSpanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span. An absent line is an ordinary outcome, so the
// status is Ok either way.
func (t *tracerImpl) EndSpan(span trace.Span, found bool) {
	span.SetAttributes(attribute.Bool("line.found", found))
	span.SetStatus(codes.Ok, "")
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, _ LookupMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, LookupSpanName)
}

func (t *noopTracer) EndSpan(span trace.Span, _ bool) {
	span.End()
}

package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracer_LookupSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	tr := NewTracer(tp.Tracer("test"))

	_, span := tr.StartSpan(context.Background(), LookupMeta{Index: 7, Path: "/data/file.txt"})
	tr.EndSpan(span, true)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name() != LookupSpanName {
		t.Errorf("span name = %q, want %q", s.Name(), LookupSpanName)
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}

	if v, ok := spanAttr(s.Attributes(), "line.index"); !ok || v.AsInt64() != 7 {
		t.Errorf("line.index = %v, want 7", v.AsInt64())
	}
	if v, ok := spanAttr(s.Attributes(), "file.path"); !ok || v.AsString() != "/data/file.txt" {
		t.Errorf("file.path = %q", v.AsString())
	}
	if v, ok := spanAttr(s.Attributes(), "line.found"); !ok || !v.AsBool() {
		t.Errorf("line.found = %v, want true", v.AsBool())
	}
}

func TestTracer_AbsentIsNotAnError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	tr := NewTracer(tp.Tracer("test"))

	_, span := tr.StartSpan(context.Background(), LookupMeta{Index: -1})
	tr.EndSpan(span, false)

	s := recorder.Ended()[0]
	if s.Status().Code == codes.Error {
		t.Error("absent lookup should not mark the span as an error")
	}
	if _, ok := spanAttr(s.Attributes(), "file.path"); ok {
		t.Error("file.path should be omitted when empty")
	}
	if v, _ := spanAttr(s.Attributes(), "line.found"); v.AsBool() {
		t.Error("line.found should be false")
	}
}

func TestNoopTracer_NoPanic(t *testing.T) {
	tr := NewNoopTracer()
	_, span := tr.StartSpan(context.Background(), LookupMeta{Index: 0})
	tr.EndSpan(span, true)
}

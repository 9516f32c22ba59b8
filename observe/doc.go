// Package observe provides logging, metrics and tracing for the line server.
//
// It is a pure instrumentation library: it builds OpenTelemetry providers
// from Config and exposes small interfaces (Logger, Metrics, Tracer) that the
// lines, cache and server packages record into. Exporter selection lives in
// the exporters subpackage.
package observe

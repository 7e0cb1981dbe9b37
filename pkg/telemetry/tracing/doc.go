// Package tracing configures OpenTelemetry distributed tracing for
// Ganymede.
//
// Spans are exported over OTLP/gRPC. When tracing is disabled the package
// hands out a noop tracer, so the gate's hot path pays only the cost of a
// virtual call.
package tracing

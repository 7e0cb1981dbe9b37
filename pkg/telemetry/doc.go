// Package telemetry provides observability for the Ganymede compliance gate.
//
// # Components
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics collection and exposition
//   - tracing: OpenTelemetry distributed tracing
//
// Metrics are the primary operational signal: the gate's acceptance targets
// (sub-5ms P99 cached-path latency, >85% hit rate) are expressed as
// Prometheus queries over the gate's hit/miss counters and latency
// histogram. See pkg/telemetry/metrics for the metric inventory.
package telemetry

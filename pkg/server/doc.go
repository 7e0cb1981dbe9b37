// Package server provides the admin HTTP server for the validation gate.
//
// The server is an operational surface, not a data plane: validation
// itself happens in-process through pkg/gate. The admin server exposes
// health probes, Prometheus metrics, the current policy identity, a
// manual rotation endpoint, and read access to audit records.
//
// # Routes
//
//   - GET  /healthz            - Liveness probe (always returns 200)
//   - GET  /readyz             - Readiness probe (200 once a policy identity is loaded)
//   - GET  /metrics            - Prometheus metrics (path configurable)
//   - GET  /v1/policy          - Current policy identity
//   - POST /v1/policy/rotate   - Rotate to a new policy identity
//   - GET  /v1/cache           - Cache occupancy
//   - GET  /v1/audit/records   - Query audit records (404 when auditing is disabled)
//
// # Lifecycle
//
// Start blocks until the context is cancelled, a shutdown signal
// (SIGTERM, SIGINT) arrives, or the listener fails. Shutdown drains
// in-flight requests up to the configured shutdown timeout.
package server

// Package logging configures structured logging for Ganymede on top of
// log/slog.
//
// Two output formats are supported: JSON for production and plain text for
// local development. The validation hot path never logs; only rotation
// events and failure paths produce records, so logging cost does not count
// against the gate's latency budget.
package logging

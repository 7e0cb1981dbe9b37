// Package audit records completed validation verdicts for later inspection.
//
// The audit trail is an observe-only collaborator of the compliance gate:
// it consumes validation results and never participates in cache or gate
// logic. Records are buffered and written asynchronously; when the buffer
// is full, records are dropped and counted rather than blocking the
// validation path.
//
// Storage backends live in the storage subpackage (in-memory for tests,
// SQLite for persistence); scheduled retention pruning lives in the
// retention subpackage.
package audit

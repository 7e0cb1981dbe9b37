// Package metrics provides Prometheus metrics for the Ganymede compliance
// gate.
//
// # Metric inventory
//
//   - ganymede_gate_cache_hits_total / ganymede_gate_cache_misses_total:
//     cache effectiveness; the >85% hit-rate target is
//     hits / (hits + misses) over a rate window
//   - ganymede_gate_validation_duration_seconds: end-to-end validation
//     latency histogram labeled by decision; the P99 < 5ms target is a
//     histogram_quantile query over the cached path
//   - ganymede_cache_entries / ganymede_cache_capacity /
//     ganymede_cache_evictions_total: cache occupancy and churn
//   - ganymede_policy_rotations_total /
//     ganymede_policy_last_rotation_timestamp_seconds: policy identity
//     rotation activity
//
// All metrics register against a caller-supplied registry (or a private one
// by default) so tests can assert on values without global state.
package metrics

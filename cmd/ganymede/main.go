// Ganymede is a compliance-check cache and validation gate.
//
// It validates content fingerprints against an externally versioned
// policy, caching verdicts under the active policy identity so that
// repeated checks are answered in-memory:
//   - Bounded LRU verdict cache with TTL and identity-tagged entries
//   - Instant, atomic policy rotation with lazy invalidation
//   - Single-flight decision computation per (fingerprint, identity)
//   - Prometheus metrics, OTLP tracing, and a persistent audit trail
//
// Usage:
//
//	# Start the gate service with default configuration
//	ganymede run
//
//	# Start with a custom configuration file
//	ganymede run --config /path/to/config.yaml
//
//	# Validate a configuration file without starting
//	ganymede validate --config /path/to/config.yaml
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}

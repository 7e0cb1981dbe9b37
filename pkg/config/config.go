package config

import "time"

// Config is the root configuration structure for Ganymede.
// It contains all configuration sections for the compliance gate, validation
// cache, policy identity source, audit trail, telemetry, and the admin server.
type Config struct {
	// Gate contains configuration for the compliance gate, including the
	// decision computation timeout.
	Gate GateConfig `yaml:"gate"`

	// Cache contains configuration for the validation cache, including
	// capacity, entry TTL, and shard count.
	Cache CacheConfig `yaml:"cache"`

	// Policy contains configuration for the policy identity source
	// (static, file, or git) and rotation watching.
	Policy PolicyConfig `yaml:"policy"`

	// Audit contains configuration for the verdict audit trail, including
	// storage backend selection and retention.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Server contains configuration for the admin HTTP server exposing
	// health, metrics, and policy endpoints.
	Server ServerConfig `yaml:"server"`
}

// GateConfig contains configuration for the compliance gate.
type GateConfig struct {
	// ComputationTimeout is the maximum duration a single decision
	// computation (and any caller waiting on a shared in-flight
	// computation) may take before the caller receives an error verdict.
	// Default: 2s
	ComputationTimeout time.Duration `yaml:"computation_timeout"`
}

// CacheConfig contains configuration for the validation cache.
type CacheConfig struct {
	// Capacity is the maximum total number of cached verdicts. The cache
	// never grows beyond this bound; least-recently-used entries are
	// evicted to make room.
	// Default: 10000
	Capacity int `yaml:"capacity"`

	// EntryTTL is the maximum age of a cached verdict before it is
	// considered stale. Favor higher capacity over aggressive TTL expiry
	// when the policy identity is stable.
	// Default: 5m
	EntryTTL time.Duration `yaml:"entry_ttl"`

	// Shards is the number of independent cache shards. Must be a power
	// of two. Higher shard counts reduce lock contention under
	// concurrent load.
	// Default: 16
	Shards int `yaml:"shards"`
}

// PolicyConfig contains configuration for the policy identity source.
type PolicyConfig struct {
	// Mode selects the identity source: "static", "file", or "git".
	// Default: "static"
	Mode string `yaml:"mode"`

	// Identity is the policy identity token used in static mode.
	// Required when Mode is "static".
	Identity string `yaml:"identity"`

	// FilePath is the path to a file whose trimmed contents are the
	// policy identity. Required when Mode is "file".
	FilePath string `yaml:"file_path"`

	// Watch enables automatic rotation when the identity file changes
	// (file mode) or when the policy repository advances (git mode).
	// Default: false
	Watch bool `yaml:"watch"`

	// Git contains git source settings, used when Mode is "git".
	Git GitConfig `yaml:"git"`
}

// GitConfig contains configuration for the git policy identity source.
// The policy identity is the HEAD commit hash of the configured reference.
type GitConfig struct {
	// URL is the clone URL of the policy repository.
	URL string `yaml:"url"`

	// Reference is the branch or tag to track.
	// Default: "main"
	Reference string `yaml:"reference"`

	// LocalPath is the working directory for the repository clone.
	// Default: "data/policy-repo"
	LocalPath string `yaml:"local_path"`

	// PollInterval is how often the watcher fetches the remote to detect
	// new commits.
	// Default: 1m
	PollInterval time.Duration `yaml:"poll_interval"`

	// AuthToken is an optional token for HTTPS authentication.
	AuthToken string `yaml:"auth_token"`
}

// AuditConfig contains configuration for the verdict audit trail.
type AuditConfig struct {
	// Enabled controls whether verdicts are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// BufferSize is the async record buffer size. Records are dropped
	// (and counted) when the buffer is full; recording never blocks the
	// validation path.
	// Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// SQLite contains SQLite backend settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains audit retention settings.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains configuration for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains configuration for audit record retention.
type RetentionConfig struct {
	// Days is the number of days to retain audit records.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for the pruning job.
	// Empty disables scheduled pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing settings.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "ganymede"
	Namespace string `yaml:"namespace"`

	// Subsystem is the optional metric subsystem label.
	Subsystem string `yaml:"subsystem"`

	// Path is the HTTP path for the metrics endpoint on the admin server.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// ValidationDurationBuckets are the histogram buckets, in seconds,
	// for validation latency. The defaults resolve well below the 5ms
	// latency target for the cached path.
	ValidationDurationBuckets []float64 `yaml:"validation_duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing settings.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName is the reported service name.
	// Default: "ganymede"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS on the exporter connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces to sample, in [0, 1].
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}

// ServerConfig contains configuration for the admin HTTP server.
type ServerConfig struct {
	// Enabled controls whether the admin server is started.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

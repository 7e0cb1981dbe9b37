package config

import "time"

// Default values for configuration fields.
const (
	// Gate defaults
	DefaultComputationTimeout = 2 * time.Second

	// Cache defaults
	DefaultCacheCapacity = 10000
	DefaultCacheEntryTTL = 5 * time.Minute
	DefaultCacheShards   = 16

	// Policy defaults
	DefaultPolicyMode         = "static"
	DefaultPolicyGitReference = "main"
	DefaultPolicyGitLocalPath = "data/policy-repo"
	DefaultPolicyGitPoll      = time.Minute

	// Audit defaults
	DefaultAuditEnabled       = true
	DefaultAuditBackend       = "sqlite"
	DefaultAuditBufferSize    = 1000
	DefaultAuditSQLitePath    = "data/audit.db"
	DefaultAuditMaxOpenConns  = 10
	DefaultAuditMaxIdleConns  = 5
	DefaultAuditBusyTimeout   = 5 * time.Second
	DefaultAuditRetentionDays = 90
	DefaultAuditPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel      = "info"
	DefaultLoggingFormat     = "json"
	DefaultMetricsEnabled    = true
	DefaultMetricsNamespace  = "ganymede"
	DefaultMetricsPath       = "/metrics"
	DefaultTracingEnabled    = false
	DefaultTracingService    = "ganymede"
	DefaultTracingEndpoint   = "localhost:4317"
	DefaultTracingSampleRate = 1.0

	// Server defaults
	DefaultServerEnabled         = true
	DefaultServerListenAddress   = "127.0.0.1:9090"
	DefaultServerReadTimeout     = 10 * time.Second
	DefaultServerWriteTimeout    = 10 * time.Second
	DefaultServerShutdownTimeout = 15 * time.Second
)

// DefaultValidationDurationBuckets are the default histogram buckets for
// validation latency, in seconds. The cached path is expected to resolve in
// the sub-millisecond range, so most buckets sit below 5ms.
var DefaultValidationDurationBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1, 2.5,
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Gate defaults
	if cfg.Gate.ComputationTimeout == 0 {
		cfg.Gate.ComputationTimeout = DefaultComputationTimeout
	}

	// Cache defaults
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = DefaultCacheCapacity
	}
	if cfg.Cache.EntryTTL == 0 {
		cfg.Cache.EntryTTL = DefaultCacheEntryTTL
	}
	if cfg.Cache.Shards == 0 {
		cfg.Cache.Shards = DefaultCacheShards
	}

	// Policy defaults
	if cfg.Policy.Mode == "" {
		cfg.Policy.Mode = DefaultPolicyMode
	}
	if cfg.Policy.Git.Reference == "" {
		cfg.Policy.Git.Reference = DefaultPolicyGitReference
	}
	if cfg.Policy.Git.LocalPath == "" {
		cfg.Policy.Git.LocalPath = DefaultPolicyGitLocalPath
	}
	if cfg.Policy.Git.PollInterval == 0 {
		cfg.Policy.Git.PollInterval = DefaultPolicyGitPoll
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = DefaultAuditBufferSize
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.MaxOpenConns == 0 {
		cfg.Audit.SQLite.MaxOpenConns = DefaultAuditMaxOpenConns
	}
	if cfg.Audit.SQLite.MaxIdleConns == 0 {
		cfg.Audit.SQLite.MaxIdleConns = DefaultAuditMaxIdleConns
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditBusyTimeout
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Audit.Retention.PruneSchedule == "" {
		cfg.Audit.Retention.PruneSchedule = DefaultAuditPruneSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if len(cfg.Telemetry.Metrics.ValidationDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.ValidationDurationBuckets = DefaultValidationDurationBuckets
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRate
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultServerListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
}

// NewDefaultConfig returns a Config populated entirely with default values.
// Boolean fields that default to true are set explicitly since ApplyDefaults
// cannot distinguish false from unset.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Insecure = true
	cfg.Server.Enabled = DefaultServerEnabled
	ApplyDefaults(cfg)
	return cfg
}

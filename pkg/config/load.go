package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded over NewDefaultConfig, so sections omitted from the
// file keep their default values, including enabled-by-default booleans.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention GANYMEDE_SECTION_FIELD (e.g., GANYMEDE_CACHE_CAPACITY) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format GANYMEDE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Gate overrides
	if d, ok := envDuration("GANYMEDE_GATE_COMPUTATION_TIMEOUT"); ok {
		cfg.Gate.ComputationTimeout = d
	}

	// Cache overrides
	if n, ok := envInt("GANYMEDE_CACHE_CAPACITY"); ok {
		cfg.Cache.Capacity = n
	}
	if d, ok := envDuration("GANYMEDE_CACHE_ENTRY_TTL"); ok {
		cfg.Cache.EntryTTL = d
	}
	if n, ok := envInt("GANYMEDE_CACHE_SHARDS"); ok {
		cfg.Cache.Shards = n
	}

	// Policy overrides
	if val := os.Getenv("GANYMEDE_POLICY_MODE"); val != "" {
		cfg.Policy.Mode = val
	}
	if val := os.Getenv("GANYMEDE_POLICY_IDENTITY"); val != "" {
		cfg.Policy.Identity = val
	}
	if val := os.Getenv("GANYMEDE_POLICY_FILE_PATH"); val != "" {
		cfg.Policy.FilePath = val
	}
	if val := os.Getenv("GANYMEDE_POLICY_GIT_URL"); val != "" {
		cfg.Policy.Git.URL = val
	}
	if val := os.Getenv("GANYMEDE_POLICY_GIT_AUTH_TOKEN"); val != "" {
		cfg.Policy.Git.AuthToken = val
	}

	// Audit overrides
	if val := os.Getenv("GANYMEDE_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("GANYMEDE_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}

	// Telemetry overrides
	if val := os.Getenv("GANYMEDE_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GANYMEDE_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GANYMEDE_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}

	// Server overrides
	if val := os.Getenv("GANYMEDE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
}

// envInt reads an integer environment variable.
func envInt(name string) (int, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

// envDuration reads a duration environment variable.
func envDuration(name string) (time.Duration, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}

// Package config defines the configuration model for the Ganymede compliance
// gate and its supporting subsystems.
//
// Configuration is loaded from a YAML file, defaults are applied to any
// zero-valued fields, environment variables (GANYMEDE_SECTION_FIELD) may
// override file values, and the final result is validated before use.
//
// Typical usage:
//
//	cfg, err := config.LoadConfig("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or with environment overrides:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
package config

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - compliance-check cache and validation gate",
	Long: `Ganymede is a validation gate that checks content fingerprints against
an externally versioned compliance policy and caches the verdicts.

It provides:
  - Bounded LRU verdict caching with TTL and identity-tagged entries
  - Instant, atomic policy rotation with lazy invalidation
  - Single-flight decision computation per (fingerprint, identity)
  - Prometheus metrics, OTLP tracing, and a persistent audit trail`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

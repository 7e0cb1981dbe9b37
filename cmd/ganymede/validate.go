package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a Ganymede configuration file without starting the service.

The validate command loads the configuration, applies defaults, and runs
the same validation as the run command. Field-level problems are reported
individually.

Examples:
  # Validate the default config file
  ganymede validate

  # Validate a specific file
  ganymede validate --config /etc/ganymede/config.yaml

  # Machine-readable output
  ganymede validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validationReport is the result of validating one configuration file.
type validationReport struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func validateConfig(cmd *cobra.Command, args []string) error {
	report := validationReport{File: cfgFile, Valid: true}

	_, err := config.LoadConfig(cfgFile)
	if err != nil {
		report.Valid = false

		var verr config.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				report.Errors = append(report.Errors, fe.Error())
			}
		} else {
			report.Errors = append(report.Errors, err.Error())
		}
	}

	if validateFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, report); err != nil {
			return cli.NewCommandError("validate", err)
		}
	} else {
		if report.Valid {
			fmt.Printf("✓ %s is valid\n", report.File)
		} else {
			fmt.Printf("✗ %s is invalid:\n", report.File)
			for _, msg := range report.Errors {
				fmt.Printf("  - %s\n", msg)
			}
		}
	}

	if !report.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("configuration is invalid"))
	}
	return nil
}

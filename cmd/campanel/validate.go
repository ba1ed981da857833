package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/campanel/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a campanel configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  campanel validate -c config.yaml
  campanel validate --config /etc/campanel/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	upstream := "editable (0)"
	if cfg.DefaultUpstreamPort > 0 {
		upstream = fmt.Sprintf("editable (%d)", cfg.DefaultUpstreamPort)
	}
	cors := "disabled"
	if len(cfg.CORSOrigins) > 0 {
		cors = strings.Join(cfg.CORSOrigins, ", ")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:          %d\n", cfg.Port)
	fmt.Fprintf(out, "  Title:         %s\n", cfg.Title)
	fmt.Fprintf(out, "  Fetch timeout: %s\n", cfg.FetchTimeout.Duration())
	fmt.Fprintf(out, "  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Fprintf(out, "  Upstream port: %s\n", upstream)
	fmt.Fprintf(out, "  CORS origins:  %s\n", cors)
	fmt.Fprintf(out, "  Log level:     %s\n", cfg.LogLevel)

	return nil
}

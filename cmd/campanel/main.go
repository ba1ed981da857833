// Package main is the entry point for the campanel CLI.
//
// campanel can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	campanel serve -c config.yaml               # Start the panel
//	campanel validate -c config.yaml            # Validate configuration
//	campanel watch --port 4022                  # Print menu updates
//	campanel key --port 4022 M                  # Press a key
//	campanel version                            # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "campanel",
	Short: "A browser remote control for the MuMuDVB CAM menu",
	Long: `campanel serves a web page that shows the CAM menu of a local MuMuDVB
instance and sends keypad presses to it.

Quick start:
  1. Enable the MuMuDVB HTTP server (port 4022 in this example)
  2. Run: campanel serve
  3. Open http://localhost:8080/?port_server=4022 in your browser

Example config:
  port: 8080
  title: Living Room Tuner
  fetch_timeout: 1s
  poll_interval: 2s
  default_upstream_port: 4022`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this campanel binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "campanel %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

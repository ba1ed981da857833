package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/campanel"
)

// keyCmd sends one key press through a running panel.
var keyCmd = &cobra.Command{
	Use:   "key KEY",
	Short: "Send a keypad press through a running panel",
	Long: `Send one key press to the tuner's CAM menu and print the result.

Keys: 0-9, C (cancel) and M (enter menu).

Example:
  campanel key --port 4022 M
  campanel key --panel http://tuner.local:8080/ --port 4022 1`,
	Args: cobra.ExactArgs(1),
	RunE: runKey,
}

func init() {
	rootCmd.AddCommand(keyCmd)

	keyCmd.Flags().String("panel", defaultPanelURL, "base URL of the campanel server")
	keyCmd.Flags().Int("port", 0, "tuner service HTTP port (required)")
	keyCmd.Flags().Duration("timeout", 5*time.Second, "request timeout")
	_ = keyCmd.MarkFlagRequired("port")
}

func runKey(cmd *cobra.Command, args []string) error {
	panelURL, _ := cmd.Flags().GetString("panel")
	port, _ := cmd.Flags().GetInt("port")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	update, err := campanel.SendKey(ctx, panelURL, port, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", update.Key, update.Status)
	if update.Error != nil {
		return fmt.Errorf("key %s failed: %w", update.Key, update.Error)
	}
	return nil
}

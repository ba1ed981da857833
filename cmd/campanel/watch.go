package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/campanel"
)

const defaultPanelURL = "http://localhost:8080/"

// watchCmd polls a running panel and prints each menu update.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print CAM menu updates from a running panel",
	Long: `Poll a running campanel server for the CAM menu of one tuner and print
every update until interrupted.

A failed request prints its status and polling continues on the next tick.

Example:
  campanel watch --port 4022
  campanel watch --panel http://tuner.local:8080/ --port 4022 --interval 5s`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("panel", defaultPanelURL, "base URL of the campanel server")
	watchCmd.Flags().Int("port", 0, "tuner service HTTP port (required)")
	watchCmd.Flags().Duration("interval", 2*time.Second, "time between menu requests")
	_ = watchCmd.MarkFlagRequired("port")
}

func runWatch(cmd *cobra.Command, args []string) error {
	panelURL, _ := cmd.Flags().GetString("panel")
	port, _ := cmd.Flags().GetInt("port")
	interval, _ := cmd.Flags().GetDuration("interval")

	out := cmd.OutOrStdout()
	logger := newLogger(slog.LevelWarn)

	w, err := campanel.NewWatcher(panelURL, port,
		campanel.WithWatchInterval(interval),
		campanel.WithWatchLogger(logger),
		campanel.WithUpdateCallback(func(u campanel.MenuUpdate) {
			printMenuUpdate(out, u)
		}),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx)
}

// printMenuUpdate writes one update: the status line, then the rows when the
// display changed.
func printMenuUpdate(out io.Writer, u campanel.MenuUpdate) {
	fmt.Fprintf(out, "[%s] %s\n", u.CheckedAt.Format(time.TimeOnly), u.Status)
	if u.Status != campanel.StatusDisplayOK {
		return
	}
	for _, r := range u.Rows {
		fmt.Fprintf(out, "  %-9s %s\n", r.Label+":", r.Value)
	}
}

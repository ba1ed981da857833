// Standalone mock CAM service for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockcam --addr :4022
//
// Then in another terminal:
//
//	go run ./cmd/campanel serve --upstream-port 4022
//	open http://localhost:8080/?port_server=4022
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/campanel/example/mockcam"
)

func main() {
	cmd := &cobra.Command{
		Use:   "mockcam",
		Short: "Emulate the MuMuDVB CAM menu endpoints",
		RunE:  run,
	}
	cmd.Flags().String("addr", ":4022", "listen address")
	cmd.Flags().Bool("no-cam", false, "emulate a CAM that is not initialized")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	noCAM, _ := cmd.Flags().GetBool("no-cam")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cam := mockcam.New(!noCAM, logger)

	fmt.Printf("Mock CAM starting on %s\n", addr)
	fmt.Println("Keys: 0-9, M (menu), C (cancel), O")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	srv := &http.Server{
		Addr:              addr,
		Handler:           cam.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mock cam server: %w", err)
	}
	return nil
}

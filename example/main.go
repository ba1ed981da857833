package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/campanel"
	"github.com/jpalmerr/campanel/example/mockcam"
)

const camPort = 4022

func main() {
	// start the mock CAM (see mockcam/)
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", camPort))
	if err != nil {
		slog.Error("failed to start mock cam", "error", err)
		os.Exit(1)
	}
	go func() {
		srv := &http.Server{Handler: mockcam.New(true, slog.Default()).Handler(), ReadHeaderTimeout: 5 * time.Second}
		_ = srv.Serve(ln)
	}()

	panel, err := campanel.New(
		campanel.WithPort(8080),
		campanel.WithTitle("campanel demo"),
		campanel.WithDefaultUpstreamPort(camPort),
	)
	if err != nil {
		slog.Error("failed to create panel", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  campanel demo")
	fmt.Println()
	fmt.Printf("  Open http://localhost:8080/?port_server=%d in your browser\n", camPort)
	fmt.Println("  Press \"Enter Menu\", then a number to open an entry")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// log menu changes as seen through the panel
	var lastTitle string
	watcher, err := campanel.NewWatcher("http://localhost:8080/", camPort,
		campanel.WithUpdateCallback(func(u campanel.MenuUpdate) {
			for _, r := range u.Rows {
				if r.Label == "Title" && r.Value != lastTitle {
					lastTitle = r.Value
					slog.Info("menu changed", "title", r.Value)
				}
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}
	go func() { _ = watcher.Run(ctx) }()

	if err := panel.Start(ctx); err != nil {
		slog.Error("campanel error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/campanel"
	"github.com/jpalmerr/campanel/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// serveCmd starts the panel server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the panel server",
	Long: `Start the campanel server.

The server will:
  - Load configuration from the YAML file, if one is given
  - Apply any flags on top of it
  - Serve the panel and the XML proxy on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  campanel serve
  campanel serve -c /etc/campanel/config.yaml
  campanel serve --port 9090 --upstream-port 4022`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

// addServeFlags registers the flags that override config file settings.
func addServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("config", "c", "", "path to config file")
	flags.Int("port", config.DefaultPort, "HTTP port to listen on")
	flags.String("title", config.DefaultTitle, "page title")
	flags.Duration("fetch-timeout", config.DefaultFetchTimeout, "timeout for each upstream fetch")
	flags.Duration("poll-interval", config.DefaultPollInterval, "menu refresh interval of the page")
	flags.Int("upstream-port", 0, "tuner port pre-filled in the page")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
}

// loadServeConfig reads the config file, if any, and applies explicitly set
// flags over it.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("title") {
		cfg.Title, _ = flags.GetString("title")
	}
	if flags.Changed("fetch-timeout") {
		d, _ := flags.GetDuration("fetch-timeout")
		cfg.FetchTimeout = config.Duration(d)
	}
	if flags.Changed("poll-interval") {
		d, _ := flags.GetDuration("poll-interval")
		cfg.PollInterval = config.Duration(d)
	}
	if flags.Changed("upstream-port") {
		cfg.DefaultUpstreamPort, _ = flags.GetInt("upstream-port")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.SlogLevel())
	logger.Info("starting server",
		"port", cfg.Port,
		"fetch_timeout", cfg.FetchTimeout.Duration().String(),
		"poll_interval", cfg.PollInterval.Duration().String(),
	)

	panel, err := campanel.New(config.BuildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create panel: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- panel.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}

package campanel

import (
	"errors"
	"log/slog"
	"time"
)

// bounds accepted for the tunable durations
const (
	minFetchTimeout = 100 * time.Millisecond
	maxFetchTimeout = 30 * time.Second
	minPollInterval = 250 * time.Millisecond
)

// panelConfig holds mutable state during Panel construction.
type panelConfig struct {
	port                int
	title               string
	fetchTimeout        time.Duration
	pollInterval        time.Duration
	defaultUpstreamPort int
	corsOrigins         []string
	logger              *slog.Logger
}

// Option is a function that configures a [Panel] during construction.
//
// Options return an error if validation fails; [New] returns the first one.
//
// Built-in options: [WithPort], [WithTitle], [WithFetchTimeout],
// [WithPollInterval], [WithDefaultUpstreamPort], [WithCORSOrigins],
// [WithLogger].
type Option func(*panelConfig) error

// WithPort sets the HTTP port for the panel.
//
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *panelConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the page title shown in the browser tab and header.
//
// If not specified, defaults to "CAM Menu Management". An empty title also
// selects the default.
func WithTitle(title string) Option {
	return func(cfg *panelConfig) error {
		if title == "" {
			title = defaultTitle
		}
		cfg.title = title
		return nil
	}
}

// WithFetchTimeout bounds each upstream fetch.
//
// A fetch that does not complete in time answers with the network error
// document. Defaults to 1 second.
//
// Returns an error if d is outside 100ms-30s.
func WithFetchTimeout(d time.Duration) Option {
	return func(cfg *panelConfig) error {
		if d < minFetchTimeout || d > maxFetchTimeout {
			return errors.New("fetch timeout must be between 100ms and 30s")
		}
		cfg.fetchTimeout = d
		return nil
	}
}

// WithPollInterval sets how often the page requests the menu.
//
// Defaults to 2 seconds.
//
// Returns an error if d is below 250ms.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *panelConfig) error {
		if d < minPollInterval {
			return errors.New("poll interval must be at least 250ms")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithDefaultUpstreamPort pre-fills the tuner port input shown when the page
// is opened without port_server. Zero leaves the input at 0.
//
// Returns an error if the port is outside 0-65535.
func WithDefaultUpstreamPort(port int) Option {
	return func(cfg *panelConfig) error {
		if port < 0 || port > 65535 {
			return errors.New("default upstream port must be between 0 and 65535")
		}
		cfg.defaultUpstreamPort = port
		return nil
	}
}

// WithCORSOrigins allows pages served from other origins to call the proxy.
//
// Can be called multiple times; origins accumulate. Without it no CORS
// headers are sent.
//
// Example:
//
//	panel, err := campanel.New(
//	    campanel.WithCORSOrigins("http://tv.local", "http://192.168.1.10"),
//	)
//
// Returns an error if an origin is empty.
func WithCORSOrigins(origins ...string) Option {
	return func(cfg *panelConfig) error {
		for _, o := range origins {
			if o == "" {
				return errors.New("cors origin cannot be empty")
			}
		}
		cfg.corsOrigins = append(cfg.corsOrigins, origins...)
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the panel.
//
// If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	panel, err := campanel.New(campanel.WithLogger(logger))
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *panelConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

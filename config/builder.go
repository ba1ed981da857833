package config

import (
	"log/slog"

	"github.com/jpalmerr/campanel"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The logger is passed through unchanged; a nil logger leaves the SDK
// default in place.
func BuildOptions(cfg *Config, logger *slog.Logger) []campanel.Option {
	opts := []campanel.Option{
		campanel.WithPort(cfg.Port),
		campanel.WithTitle(cfg.Title),
		campanel.WithFetchTimeout(cfg.FetchTimeout.Duration()),
		campanel.WithPollInterval(cfg.PollInterval.Duration()),
		campanel.WithDefaultUpstreamPort(cfg.DefaultUpstreamPort),
	}

	if len(cfg.CORSOrigins) > 0 {
		opts = append(opts, campanel.WithCORSOrigins(cfg.CORSOrigins...))
	}

	if logger != nil {
		opts = append(opts, campanel.WithLogger(logger))
	}

	return opts
}

// Package config provides YAML configuration parsing for campanel.
//
// This package enables running the panel as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	port: 8080
//	title: Living Room Tuner
//	fetch_timeout: 1s
//	poll_interval: 2s
//	default_upstream_port: 4022
//	log_level: info
//	cors_origins:
//	  - http://${TV_HOST:-tv.local}
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// defaults applied by [Parse]
const (
	DefaultPort         = 8080
	DefaultTitle        = "CAM Menu Management"
	DefaultFetchTimeout = time.Second
	DefaultPollInterval = 2 * time.Second
	DefaultLogLevel     = "info"
)

// accepted ranges
const (
	minFetchTimeout = 100 * time.Millisecond
	maxFetchTimeout = 30 * time.Second

	// minPollInterval keeps a page from hammering the tuner service.
	minPollInterval = 250 * time.Millisecond
)

// Config is the root configuration structure for campanel.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the page title. Defaults to "CAM Menu Management".
	// Supports environment variable substitution.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// FetchTimeout bounds each upstream fetch. Defaults to 1s.
	// Accepts duration strings like "1s", "500ms".
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// PollInterval is the page's menu refresh interval. Defaults to 2s.
	PollInterval Duration `yaml:"poll_interval"`

	// DefaultUpstreamPort pre-fills the tuner port input when the page is
	// opened without port_server. Zero leaves it at 0.
	DefaultUpstreamPort int `yaml:"default_upstream_port"`

	// CORSOrigins lists origins allowed to call the proxy.
	// Values support environment variable substitution.
	CORSOrigins []string `yaml:"cors_origins"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// SlogLevel returns the configured log level.
// Unknown values never reach here; [Parse] rejects them.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Title:        DefaultTitle,
		Port:         DefaultPort,
		FetchTimeout: Duration(DefaultFetchTimeout),
		PollInterval: Duration(DefaultPollInterval),
		LogLevel:     DefaultLogLevel,
	}
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Title and CORSOrigins. Defaults are
// applied for every unset field before validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills zero values.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = Duration(DefaultFetchTimeout)
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	title, err := expandEnvVars(c.Title)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	c.Title = strings.TrimSpace(title)
	if c.Title == "" {
		c.Title = DefaultTitle
	}

	for i, origin := range c.CORSOrigins {
		expanded, err := expandEnvVars(origin)
		if err != nil {
			return fmt.Errorf("cors_origins[%d]: %w", i, err)
		}
		c.CORSOrigins[i] = expanded
	}

	return c.Validate()
}

// Validate checks field ranges and origin syntax.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if d := c.FetchTimeout.Duration(); d < minFetchTimeout || d > maxFetchTimeout {
		return fmt.Errorf("fetch_timeout must be between %s and %s, got %s", minFetchTimeout, maxFetchTimeout, d)
	}

	if d := c.PollInterval.Duration(); d < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, d)
	}

	if c.DefaultUpstreamPort < 0 || c.DefaultUpstreamPort > 65535 {
		return fmt.Errorf("default_upstream_port must be between 0 and 65535, got %d", c.DefaultUpstreamPort)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}

	for i, origin := range c.CORSOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil {
			return fmt.Errorf("cors_origins[%d]: invalid origin: %w", i, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("cors_origins[%d]: origin scheme must be http or https, got %q", i, u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("cors_origins[%d]: origin must include a host", i)
		}
	}

	return nil
}

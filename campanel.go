package campanel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jpalmerr/campanel/dashboard"
	"github.com/jpalmerr/campanel/internal/fetch"
	"github.com/jpalmerr/campanel/internal/server"
)

const (
	defaultPort         = 8080
	defaultTitle        = "CAM Menu Management"
	defaultFetchTimeout = fetch.DefaultTimeout
	defaultPollInterval = 2 * time.Second
)

// Panel serves the CAM menu panel: the XML proxy towards the local tuner
// service and the HTML page that drives it.
//
// The typical lifecycle is:
//
//	panel, err := campanel.New(campanel.WithPort(8080))
//	if err != nil {
//	    slog.Error("failed to create panel", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	panel.Start(ctx) // blocks until context cancelled
type Panel struct {
	port                int
	title               string
	pollInterval        time.Duration
	defaultUpstreamPort int
	corsOrigins         []string
	logger              *slog.Logger

	fetcher *fetch.Fetcher
	server  *server.Server
}

// New creates a new [Panel] with the given options.
//
// Defaults:
//   - Port: 8080
//   - Title: "CAM Menu Management"
//   - Fetch timeout: 1 second
//   - Poll interval: 2 seconds
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Panel, error) {
	cfg := &panelConfig{
		port:         defaultPort,
		title:        defaultTitle,
		fetchTimeout: defaultFetchTimeout,
		pollInterval: defaultPollInterval,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Panel{
		port:                cfg.port,
		title:               cfg.title,
		pollInterval:        cfg.pollInterval,
		defaultUpstreamPort: cfg.defaultUpstreamPort,
		corsOrigins:         append([]string(nil), cfg.corsOrigins...),
		logger:              logger,
		fetcher:             fetch.NewFetcher(cfg.fetchTimeout),
	}
	p.server = server.NewServer(server.Config{
		Port:                p.port,
		Title:               p.title,
		PollInterval:        p.pollInterval,
		DefaultUpstreamPort: p.defaultUpstreamPort,
		CORSOrigins:         p.corsOrigins,
	}, p.fetcher, dashboard.Assets, logger)

	return p, nil
}

// Start serves the panel until ctx is cancelled.
//
// Start is a blocking call. The page is available at
// http://localhost:<port>/ and each proxy request performs one upstream fetch
// bounded by the fetch timeout.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start.
func (p *Panel) Start(ctx context.Context) error {
	p.logger.Info("campanel starting", "fetch_timeout", p.fetcher.Timeout().String())
	p.logger.Info("polling configured", "interval", p.pollInterval.String())
	p.logger.Info("panel available", "url", fmt.Sprintf("http://localhost:%d/", p.port))

	if ctx.Err() != nil {
		return nil
	}

	if err := p.server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	p.fetcher.Close()
	p.logger.Info("campanel stopped")
	return nil
}

// Handler returns the panel's HTTP handler, for mounting in another server.
func (p *Panel) Handler() http.Handler {
	return p.server.Handler()
}

// Addr returns the listening address once [Panel.Start] is serving, nil before.
func (p *Panel) Addr() string {
	if a := p.server.Addr(); a != nil {
		return a.String()
	}
	return ""
}

// Port returns the configured HTTP port.
func (p *Panel) Port() int {
	return p.port
}

// Title returns the page title.
func (p *Panel) Title() string {
	return p.title
}

// FetchTimeout returns the bound applied to each upstream fetch.
func (p *Panel) FetchTimeout() time.Duration {
	return p.fetcher.Timeout()
}

// PollInterval returns the page's menu refresh interval.
func (p *Panel) PollInterval() time.Duration {
	return p.pollInterval
}

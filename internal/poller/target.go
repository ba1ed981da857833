package poller

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jpalmerr/campanel/internal/dispatch"
	"github.com/jpalmerr/campanel/internal/fetch"
)

// Target identifies the dispatcher to query and the tuner port to proxy to.
//
// A Target is built once and passed to the [Poller] or [Sender]; neither reads
// the port from anywhere else.
type Target struct {
	// PanelURL is the dispatcher base URL, e.g. "http://localhost:8080/".
	PanelURL string

	// Port is the tuner service HTTP port forwarded as port_server.
	Port int
}

// URL returns the dispatcher URL for a proxy request.
func (t Target) URL(mode dispatch.Mode, key string) (string, error) {
	u, err := url.Parse(t.PanelURL)
	if err != nil {
		return "", fmt.Errorf("invalid panel url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("panel url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = dispatch.PanelQuery(t.Port, mode, key).Encode()
	return u.String(), nil
}

// Validate checks that the target can produce proxy requests.
func (t Target) Validate() error {
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", t.Port)
	}
	_, err := t.URL(dispatch.ModeMenu, "")
	return err
}

// get issues one dispatcher request without an own timeout; the dispatcher
// bounds the upstream fetch and ctx bounds the rest.
func (t Target) get(ctx context.Context, client *fetch.Client, mode dispatch.Mode, key string) fetch.Response {
	u, err := t.URL(mode, key)
	if err != nil {
		return fetch.Response{Error: err}
	}
	return client.Get(ctx, u, 0)
}

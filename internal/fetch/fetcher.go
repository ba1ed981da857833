package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single upstream fetch.
const DefaultTimeout = time.Second

// Diagnostic codes reported for failed fetches. The values follow wget's exit
// statuses so existing tooling reading "wget error N" keeps working.
const (
	CodeGeneric  = 1
	CodeNetwork  = 4
	CodeAuth     = 6
	CodeProtocol = 7
	CodeServer   = 8
)

// Error describes a failed upstream fetch.
type Error struct {
	// Code is the wget-compatible diagnostic code.
	Code int

	// URL is the upstream URL that was requested.
	URL string

	// StatusCode is the upstream HTTP status, zero if no response arrived.
	StatusCode int

	// Cause is the underlying transport error, nil for HTTP error replies.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("fetch %s: code %d: http status %d", e.URL, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: code %d: %v", e.URL, e.Code, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Code extracts the diagnostic code from err.
// Returns 0 for nil and [CodeGeneric] for errors that are not an [*Error].
func Code(err error) int {
	if err == nil {
		return 0
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeGeneric
}

// Fetcher issues single, unretried GETs against the local service.
type Fetcher struct {
	client  *Client
	timeout time.Duration
}

// NewFetcher creates a [Fetcher] with the given per-request timeout.
// A zero or negative timeout selects [DefaultTimeout].
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:  NewClient(),
		timeout: timeout,
	}
}

// Timeout returns the per-request timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// Fetch performs one GET and returns the raw body on a 2xx reply.
//
// Any other outcome returns an [*Error]; the body of an error reply is
// discarded, as wget does when writing to stdout.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp := f.client.Get(ctx, url, f.timeout)
	if resp.Error != nil {
		return nil, &Error{
			Code:       classifyTransport(resp.Error),
			URL:        url,
			StatusCode: resp.StatusCode,
			Cause:      resp.Error,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Code:       classifyStatus(resp.StatusCode),
			URL:        url,
			StatusCode: resp.StatusCode,
		}
	}

	return resp.Body, nil
}

// Close releases idle upstream connections.
func (f *Fetcher) Close() {
	if f == nil {
		return
	}
	f.client.Close()
}

// classifyTransport maps a transport-level failure to a diagnostic code.
// Timeouts and refused connections are network failures, as wget reports them.
func classifyTransport(err error) int {
	switch {
	case errors.Is(err, errBuildRequest), errors.Is(err, ErrBodyTooLarge):
		return CodeGeneric
	case errors.Is(err, errTooManyRedirects):
		return CodeProtocol
	default:
		return CodeNetwork
	}
}

// classifyStatus maps a non-2xx HTTP status to a diagnostic code.
func classifyStatus(status int) int {
	switch status {
	case http.StatusUnauthorized, http.StatusProxyAuthRequired:
		return CodeAuth
	default:
		return CodeServer
	}
}

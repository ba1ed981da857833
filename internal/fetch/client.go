package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// maxRedirects matches wget's default redirect limit.
const maxRedirects = 20

// connection pooling limits; the panel only ever talks to a handful of local ports
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 4
	defaultIdleConnTimeout     = 30 * time.Second
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBuildRequest     = errors.New("failed to create request")

	// ErrBodyTooLarge reports a reply body over the 1MB limit. The body is
	// never truncated.
	ErrBodyTooLarge = errors.New("response body too large")
)

// Response holds the result of an HTTP request made by [Client].
//
// Response captures the body, status code, latency, and any error that
// occurred. Bodies over 1MB are rejected with [ErrBodyTooLarge].
type Response struct {
	// Body contains the complete HTTP response body.
	Body []byte

	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any transport error that occurred during the request.
	// nil indicates the request completed (though status may indicate an error).
	Error error
}

// Client is an HTTP client wrapper for short GET requests.
//
// Client uses per-request timeouts via context rather than a global timeout,
// so the upstream fetcher and the poller can apply different limits.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new [Client].
//
// Redirects are followed up to 20 hops, matching wget's default. Timeouts are
// applied per-request in [Client.Get], not as a global client timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
	}
}

// Get performs an HTTP GET and returns a structured [Response].
//
// A positive timeout is applied via context cancellation; zero or negative
// means the request is bounded only by ctx. A body over 1MB is an error.
//
// Get always returns a Response; errors are captured in the Error field
// rather than returned separately.
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("%w: %w", errBuildRequest, err),
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}
	if len(body) > maxResponseBodySize {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, maxResponseBodySize),
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times and on a nil client. The client remains usable
// after Close.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

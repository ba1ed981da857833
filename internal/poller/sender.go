package poller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jpalmerr/campanel/internal/dispatch"
	"github.com/jpalmerr/campanel/internal/fetch"
	"github.com/jpalmerr/campanel/internal/menu"
)

// ErrUnknownKey is reported for keys outside the keypad set.
var ErrUnknownKey = errors.New("unknown key")

// ActionUpdate is the outcome of one key press.
type ActionUpdate struct {
	Key string

	// Status is the panel status line: the CAM result text or a failure status.
	Status string

	// Result is the parsed action reply; nil unless one was parsed.
	Result *menu.ActionResult

	// StatusCode is the dispatcher HTTP status, zero on transport failure.
	StatusCode int

	Latency time.Duration

	// Err is the transport, HTTP status or parse error behind a failure status.
	Err error
}

// Sender sends key presses through the dispatcher. One call is one request;
// nothing is retried and concurrent calls are not ordered.
type Sender struct {
	target Target
	client *fetch.Client
}

// NewSender creates a [Sender] for target.
func NewSender(target Target) *Sender {
	return &Sender{
		target: target,
		client: fetch.NewClient(),
	}
}

// Send presses key and returns the resulting status.
//
// Keys outside [dispatch.Keys] are rejected without a request.
func (s *Sender) Send(ctx context.Context, key string) ActionUpdate {
	update := ActionUpdate{Key: key}

	if !dispatch.ValidKey(key) {
		update.Err = fmt.Errorf("%w: %q", ErrUnknownKey, key)
		update.Status = menu.TransportErrorStatus(update.Err)
		return update
	}

	resp := s.target.get(ctx, s.client, dispatch.ModeAction, key)
	update.StatusCode = resp.StatusCode
	update.Latency = resp.Latency

	switch {
	case resp.Error != nil:
		update.Err = resp.Error
		update.Status = menu.TransportErrorStatus(resp.Error)
	case resp.StatusCode != http.StatusOK:
		update.Status = menu.HTTPErrorStatus(resp.StatusCode)
		update.Err = menu.HTTPStatusError(resp.StatusCode)
	default:
		res, err := menu.ParseAction(resp.Body)
		if err != nil {
			update.Err = err
			update.Status = menu.ParseStatus(err)
			break
		}
		update.Result = res
		update.Status = res.Status()
	}
	return update
}

// Close releases idle connections.
func (s *Sender) Close() {
	s.client.Close()
}

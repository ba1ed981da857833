package campanel

import (
	"time"

	"github.com/jpalmerr/campanel/internal/menu"
	"github.com/jpalmerr/campanel/internal/poller"
)

// Status lines reported by [Watcher] and [SendKey]. Failure statuses carry
// details and are built per update: "Loaded with HTTP error <status>" and
// "Error: <message>".
const (
	StatusDisplayOK = menu.StatusDisplayOK
	StatusNoData    = menu.StatusNoData
	StatusXMLError  = menu.StatusXMLError
	StatusNoResult  = menu.StatusNoResult
)

// Row is one labelled line of the menu display, e.g. {"Item #1", "Setup"}.
type Row struct {
	Label string
	Value string
}

// MenuUpdate holds the outcome of one menu request.
//
// Rows is only set when Status is [StatusDisplayOK]; any other status leaves
// the previous display in place.
type MenuUpdate struct {
	// Status is the panel status line.
	Status string

	// Rows is the rendered menu in display order.
	Rows []Row

	// StatusCode is the HTTP status returned by the panel.
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the time taken to complete the request.
	Latency time.Duration

	// CheckedAt is the timestamp when the request completed.
	CheckedAt time.Time

	// Error contains the transport, HTTP status or parse error behind a
	// failure status.
	Error error
}

// ActionUpdate holds the outcome of one key press.
type ActionUpdate struct {
	// Key is the key that was sent.
	Key string

	// Status is the CAM result text, or a failure status.
	Status string

	// StatusCode is the HTTP status returned by the panel.
	StatusCode int

	// Latency is the time taken to complete the request.
	Latency time.Duration

	// Error contains the transport, HTTP status or parse error behind a
	// failure status.
	Error error
}

// toMenuUpdate converts an internal poller update to the public type.
func toMenuUpdate(u poller.MenuUpdate) MenuUpdate {
	out := MenuUpdate{
		Status:     u.Status,
		StatusCode: u.StatusCode,
		Latency:    u.Latency,
		CheckedAt:  u.CheckedAt,
		Error:      u.Err,
	}
	if u.Snapshot != nil {
		for _, r := range u.Snapshot.Rows() {
			out.Rows = append(out.Rows, Row{Label: r.Label, Value: r.Value})
		}
	}
	return out
}

// toActionUpdate converts an internal sender update to the public type.
func toActionUpdate(u poller.ActionUpdate) ActionUpdate {
	return ActionUpdate{
		Key:        u.Key,
		Status:     u.Status,
		StatusCode: u.StatusCode,
		Latency:    u.Latency,
		Error:      u.Err,
	}
}

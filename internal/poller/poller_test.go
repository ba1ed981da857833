package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/campanel/internal/menu"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const menuDoc = `<?xml version="1.0"?><menu><title>Main</title><item num="1">Status</item></menu>`

func TestTarget_URL(t *testing.T) {
	target := Target{PanelURL: "http://localhost:8080", Port: 4242}

	got, err := target.URL(1, "")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if want := "http://localhost:8080/?port_server=4242&query=1"; got != want {
		t.Errorf("URL(menu) = %q, want %q", got, want)
	}

	got, err = target.URL(2, "M")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if want := "http://localhost:8080/?key=M&port_server=4242&query=2"; got != want {
		t.Errorf("URL(action) = %q, want %q", got, want)
	}
}

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{"valid", Target{PanelURL: "http://localhost:8080/", Port: 4242}, false},
		{"zero port", Target{PanelURL: "http://localhost:8080/", Port: 0}, true},
		{"port too high", Target{PanelURL: "http://localhost:8080/", Port: 70000}, true},
		{"no scheme", Target{PanelURL: "localhost:8080", Port: 4242}, true},
		{"bad scheme", Target{PanelURL: "ftp://localhost/", Port: 4242}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPoller_PollOnce_Statuses(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantStatus   string
		wantSnapshot bool
		wantErr      error
	}{
		{"menu", http.StatusOK, menuDoc, menu.StatusDisplayOK, true, nil},
		{"proxy error document", http.StatusOK, `<?xml version="1.0"?><error>wget error 4</error>`, menu.StatusNoData, false, menu.ErrNoData},
		{"garbage", http.StatusOK, `<html><body>oops`, menu.StatusXMLError, false, menu.ErrMalformed},
		{"http error", http.StatusBadGateway, menuDoc, "Loaded with HTTP error 502", false, menu.ErrHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewPoller(Target{PanelURL: server.URL, Port: 4242}, time.Minute, testLogger())
			defer p.Stop()

			update := p.PollOnce(context.Background())
			if update.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", update.Status, tt.wantStatus)
			}
			if (update.Snapshot != nil) != tt.wantSnapshot {
				t.Errorf("Snapshot = %+v, want present = %v", update.Snapshot, tt.wantSnapshot)
			}
			if update.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", update.StatusCode, tt.status)
			}
			if tt.wantErr == nil && update.Err != nil {
				t.Errorf("Err = %v, want nil", update.Err)
			}
			if tt.wantErr != nil && !errors.Is(update.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", update.Err, tt.wantErr)
			}
		})
	}
}

func TestPoller_PollOnce_SendsMenuQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(menuDoc))
	}))
	defer server.Close()

	p := NewPoller(Target{PanelURL: server.URL, Port: 1234}, time.Minute, testLogger())
	defer p.Stop()

	p.PollOnce(context.Background())
	if gotQuery != "port_server=1234&query=1" {
		t.Errorf("query = %q, want port_server=1234&query=1", gotQuery)
	}
}

func TestPoller_PollOnce_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p := NewPoller(Target{PanelURL: url, Port: 4242}, time.Minute, testLogger())
	defer p.Stop()

	update := p.PollOnce(context.Background())
	if update.Err == nil {
		t.Fatal("Err = nil, want transport error")
	}
	if !strings.HasPrefix(update.Status, "Error: ") {
		t.Errorf("Status = %q, want Error: prefix", update.Status)
	}
	if update.Snapshot != nil {
		t.Error("Snapshot should be nil on transport error")
	}
}

// TestPoller_KeepsPollingAfterFailures verifies that failed cycles are
// followed by further cycles without any backoff.
func TestPoller_KeepsPollingAfterFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(menuDoc))
	}))
	defer server.Close()

	p := NewPoller(Target{PanelURL: server.URL, Port: 4242}, 20*time.Millisecond, testLogger())
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.After(5 * time.Second)
	var failures int
	for {
		select {
		case update := <-p.Results():
			if update.Status == menu.StatusDisplayOK {
				if failures < 2 {
					t.Errorf("got OK after %d failures, want at least 2", failures)
				}
				return
			}
			failures++
		case <-deadline:
			t.Fatalf("no successful update after %d failures", failures)
		}
	}
}

func TestPoller_FirstCycleIsImmediate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(menuDoc))
	}))
	defer server.Close()

	p := NewPoller(Target{PanelURL: server.URL, Port: 4242}, time.Hour, testLogger())
	p.Start(context.Background())
	defer p.Stop()

	select {
	case update := <-p.Results():
		if update.Snapshot == nil || update.Snapshot.Title.Value != "Main" {
			t.Errorf("update = %+v", update)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first cycle was not issued on start")
	}
}

func TestPoller_ContextCancelClosesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(menuDoc))
	}))
	defer server.Close()

	p := NewPoller(Target{PanelURL: server.URL, Port: 4242}, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	<-p.Results()
	cancel()

	done := make(chan struct{})
	go func() {
		for range p.Results() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("results channel not closed after context cancellation")
	}
	p.Stop()
}

func TestPoller_StopCancelsInFlightCycle(t *testing.T) {
	started := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	p := NewPoller(Target{PanelURL: server.URL, Port: 4242}, time.Hour, testLogger())
	p.Start(context.Background())
	<-started

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() blocked on an in-flight request")
	}
}

func TestPoller_StopLifecycle(t *testing.T) {
	p := NewPoller(Target{PanelURL: "http://localhost:1/", Port: 4242}, time.Minute, testLogger())

	// stop before start, twice, then start is a no-op
	p.Stop()
	p.Stop()
	p.Start(context.Background())

	if _, ok := <-p.Results(); ok {
		t.Error("results channel should be closed")
	}
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	p := NewPoller(Target{}, 0, nil)
	defer p.Stop()
	if p.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", p.Interval(), DefaultInterval)
	}
}

package campanel

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestStart_BlocksUntilContextCancelled verifies that Start blocks until the
// provided context is cancelled.
func TestStart_BlocksUntilContextCancelled(t *testing.T) {
	// use a high port to avoid conflicts
	p, err := New(WithPort(19301), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- p.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("Start() returned early with error: %v", err)
	default:
		// expected: still blocking
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

// TestStart_ReturnsImmediatelyIfContextAlreadyCancelled verifies that Start
// returns immediately if the context is already cancelled.
func TestStart_ReturnsImmediatelyIfContextAlreadyCancelled(t *testing.T) {
	p, err := New(WithPort(19302), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.Start(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return with already-cancelled context")
	}
}

// TestStart_ServesPanel verifies the page and health endpoints while running.
func TestStart_ServesPanel(t *testing.T) {
	p, err := New(WithPort(19303), WithTitle("Bedroom"), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.Start(ctx)
	}()

	body := waitForBody(t, "http://localhost:19303/")
	if !strings.Contains(body, "<title>Bedroom</title>") {
		t.Errorf("page missing configured title: %s", body)
	}
	if p.Addr() == "" {
		t.Error("Addr() empty while serving")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

// TestStart_PortInUse verifies Start reports a bind failure.
func TestStart_PortInUse(t *testing.T) {
	first, err := New(WithPort(19304), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = first.Start(ctx) }()
	waitForBody(t, "http://localhost:19304/healthz")

	second, err := New(WithPort(19304), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := second.Start(ctx); err == nil || !strings.Contains(err.Error(), "failed to start HTTP server") {
		t.Errorf("Start() error = %v, want bind failure", err)
	}
}

// TestStart_MultipleSequentialRuns verifies that a new Panel can be started
// after the previous one shuts down.
func TestStart_MultipleSequentialRuns(t *testing.T) {
	for i := 0; i < 3; i++ {
		p, err := New(WithPort(19305+i), WithLogger(testLogger()))
		if err != nil {
			t.Fatalf("iteration %d: New() error = %v", i, err)
		}

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- p.Start(ctx)
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("iteration %d: Start() returned error: %v", i, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("iteration %d: Start() did not return", i)
		}
	}
}

// TestStart_ConcurrentAccess verifies accessors are safe while serving.
func TestStart_ConcurrentAccess(t *testing.T) {
	p, err := New(WithPort(19310), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = p.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Port()
			_ = p.Addr()
			_ = p.PollInterval()
			_ = p.FetchTimeout()
		}()
	}

	time.Sleep(50 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("goroutines did not complete")
	}
}

// TestStart_WithTimeoutContext verifies Start respects deadline contexts.
func TestStart_WithTimeoutContext(t *testing.T) {
	p, err := New(WithPort(19311), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = p.Start(ctx)
	elapsed := time.Since(start)

	if elapsed < 150*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("Start() ran for %v, expected ~200ms", elapsed)
	}
	if err != nil {
		t.Errorf("Start() error = %v, want nil", err)
	}
}

// waitForBody polls url until it answers 200 and returns the body.
func waitForBody(t *testing.T, url string) string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return string(body)
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("%s did not become ready", url)
	return ""
}

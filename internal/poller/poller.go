package poller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jpalmerr/campanel/internal/dispatch"
	"github.com/jpalmerr/campanel/internal/fetch"
	"github.com/jpalmerr/campanel/internal/menu"
)

// DefaultInterval is the time between menu requests.
const DefaultInterval = 2 * time.Second

// MenuUpdate is the outcome of one polling cycle.
type MenuUpdate struct {
	// Status is the panel status line, e.g. "Display OK".
	Status string

	// Snapshot is the parsed menu; nil unless Status is menu.StatusDisplayOK.
	Snapshot *menu.Snapshot

	// StatusCode is the dispatcher HTTP status, zero on transport failure.
	StatusCode int

	// Latency is the time taken by the request.
	Latency time.Duration

	// CheckedAt is when the cycle completed.
	CheckedAt time.Time

	// Err is the transport, HTTP status or parse error behind a non-OK status.
	Err error
}

// Poller requests the menu snapshot on a fixed interval.
//
// Each cycle runs in its own goroutine, so a slow reply never delays the
// schedule, and updates may arrive out of issue order. There is no backoff:
// failed cycles are simply followed by the next tick.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Poller struct {
	target   Target
	interval time.Duration
	client   *fetch.Client
	results  chan MenuUpdate
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// NewPoller creates a [Poller] for target.
//
// A zero or negative interval selects [DefaultInterval]. The poller must be
// started with [Poller.Start]; updates are read from [Poller.Results].
func NewPoller(target Target, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		target:   target,
		interval: interval,
		client:   fetch.NewClient(),
		results:  make(chan MenuUpdate, 1),
		logger:   logger,
	}
}

// Results returns the channel of [MenuUpdate] values.
//
// The channel is closed once the poller has stopped and every in-flight cycle
// has finished.
func (p *Poller) Results() <-chan MenuUpdate {
	return p.results
}

// Interval returns the time between cycles.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start begins polling in a background goroutine.
//
// The first cycle is issued immediately, then one per interval until ctx is
// cancelled or [Poller.Stop] is called. Start is idempotent; calling it after
// Stop is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		var cycles sync.WaitGroup
		defer func() {
			cycles.Wait()
			p.closeOnce.Do(func() { close(p.results) })
		}()

		issue := func() {
			cycles.Add(1)
			go func() {
				defer cycles.Done()
				update := p.PollOnce(pollCtx)
				select {
				case p.results <- update:
				case <-pollCtx.Done():
				}
			}()
		}

		issue()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				issue()
			}
		}
	}()
}

// Stop cancels polling and waits for in-flight cycles to finish.
//
// Stop is idempotent and safe to call before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		if p.cancel != nil {
			p.cancel()
		}
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.client.Close()

	// ensure channel is closed even if Start() was never called
	p.closeOnce.Do(func() { close(p.results) })
}

// PollOnce runs a single cycle synchronously.
func (p *Poller) PollOnce(ctx context.Context) MenuUpdate {
	resp := p.target.get(ctx, p.client, dispatch.ModeMenu, "")

	update := MenuUpdate{
		StatusCode: resp.StatusCode,
		Latency:    resp.Latency,
		CheckedAt:  time.Now(),
	}

	switch {
	case resp.Error != nil:
		update.Status = menu.TransportErrorStatus(resp.Error)
		update.Err = resp.Error
	case resp.StatusCode != http.StatusOK:
		update.Status = menu.HTTPErrorStatus(resp.StatusCode)
		update.Err = menu.HTTPStatusError(resp.StatusCode)
	default:
		snap, err := menu.ParseMenu(resp.Body)
		update.Status = menu.ParseStatus(err)
		update.Snapshot = snap
		update.Err = err
	}

	if update.Err != nil && !errors.Is(update.Err, context.Canceled) {
		p.logger.Debug("menu poll failed",
			"port", p.target.Port,
			"status", update.Status,
			"latency_ms", update.Latency.Milliseconds(),
		)
	}
	return update
}

package campanel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/campanel/internal/dispatch"
	"github.com/jpalmerr/campanel/internal/poller"
)

// Keys lists the keypad keys accepted by [SendKey], in keypad order.
func Keys() []string {
	return append([]string(nil), dispatch.Keys...)
}

// watchConfig holds mutable state during Watcher construction.
type watchConfig struct {
	interval  time.Duration
	logger    *slog.Logger
	callbacks []func(MenuUpdate)
}

// WatchOption configures a [Watcher].
type WatchOption func(*watchConfig) error

// WithWatchInterval sets the time between menu requests. Defaults to 2 seconds.
//
// Returns an error if d is below 250ms.
func WithWatchInterval(d time.Duration) WatchOption {
	return func(cfg *watchConfig) error {
		if d < minPollInterval {
			return errors.New("watch interval must be at least 250ms")
		}
		cfg.interval = d
		return nil
	}
}

// WithWatchLogger sets the logger used for failed polls.
//
// Returns an error if the logger is nil.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(cfg *watchConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithUpdateCallback registers a function called with every [MenuUpdate].
//
// Multiple callbacks run in registration order from a single goroutine, so
// they must not block. Panics are recovered and logged. Nil callbacks are
// ignored.
//
// Example:
//
//	w, err := campanel.NewWatcher("http://localhost:8080/", 4242,
//	    campanel.WithUpdateCallback(func(u campanel.MenuUpdate) {
//	        if u.Status == campanel.StatusDisplayOK {
//	            render(u.Rows)
//	        }
//	    }),
//	)
func WithUpdateCallback(cb func(MenuUpdate)) WatchOption {
	return func(cfg *watchConfig) error {
		if cb == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}

// Watcher polls a running panel for the menu of one tuner port.
type Watcher struct {
	target    poller.Target
	interval  time.Duration
	logger    *slog.Logger
	callbacks []func(MenuUpdate)
}

// NewWatcher creates a [Watcher] for the panel at panelURL proxying to the
// tuner service on port.
//
// Returns an error if the URL is not http(s), the port is outside 1-65535, or
// an option is invalid.
func NewWatcher(panelURL string, port int, opts ...WatchOption) (*Watcher, error) {
	cfg := &watchConfig{interval: poller.DefaultInterval}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	target := poller.Target{PanelURL: panelURL, Port: port}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid watch target: %w", err)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		target:    target,
		interval:  cfg.interval,
		logger:    logger,
		callbacks: cfg.callbacks,
	}, nil
}

// Run polls until ctx is cancelled, invoking the callbacks with each update.
//
// The first request is issued immediately and then one per interval whatever
// the outcome. Run returns nil once every in-flight request has finished.
func (w *Watcher) Run(ctx context.Context) error {
	p := poller.NewPoller(w.target, w.interval, w.logger)
	p.Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		p.Stop()
	}()

	for update := range p.Results() {
		public := toMenuUpdate(update)
		for _, cb := range w.callbacks {
			invokeCallbackSafe(cb, public, w.logger)
		}
	}

	<-done
	return nil
}

// SendKey presses key on the panel at panelURL for the tuner service on port.
//
// One request is sent and never retried. The returned error covers an
// invalid target only; request and reply failures are reported through the
// update's Status and Error.
func SendKey(ctx context.Context, panelURL string, port int, key string) (ActionUpdate, error) {
	target := poller.Target{PanelURL: panelURL, Port: port}
	if err := target.Validate(); err != nil {
		return ActionUpdate{Key: key}, fmt.Errorf("invalid key target: %w", err)
	}

	sender := poller.NewSender(target)
	defer sender.Close()

	return toActionUpdate(sender.Send(ctx, key)), nil
}

// invokeCallbackSafe calls an update callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(MenuUpdate), update MenuUpdate, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("update callback panicked",
				"panic", r,
				"status", update.Status,
			)
		}
	}()
	cb(update)
}

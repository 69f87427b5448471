// Package watchdog ends the process lifecycle once clients go idle.
//
// The watchdog polls an activity.Clock on a fixed interval. It moves from
// Running to ShuttingDown when the idle threshold is reached, when the serving
// task has exited on its own, or when its parent context is canceled.
// ShuttingDown is terminal: the watchdog cancels the serving task and returns.
package watchdog

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/yndnr/deckshare/internal/core/activity"
)

// Default timings.
const (
	DefaultInterval  = time.Second
	DefaultThreshold = 60 * time.Second
)

// State is the watchdog state.
type State int32

const (
	// StateRunning is the initial state.
	StateRunning State = iota
	// StateShuttingDown is terminal.
	StateShuttingDown
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// Reason explains why the watchdog shut down.
type Reason string

const (
	// ReasonIdle means no activity was seen for the threshold.
	ReasonIdle Reason = "idle"
	// ReasonServerExited means the serving task finished on its own.
	ReasonServerExited Reason = "server_exited"
	// ReasonCanceled means the parent context was canceled.
	ReasonCanceled Reason = "canceled"
)

// Observer receives the idle duration on every poll.
type Observer func(idle time.Duration, state State)

// Watchdog decides when the server shuts down.
type Watchdog struct {
	clock     *activity.Clock
	cancel    context.CancelFunc
	interval  time.Duration
	threshold time.Duration
	logger    *slog.Logger
	observer  Observer

	state atomic.Int32
}

// Option configures a Watchdog.
type Option func(*Watchdog)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watchdog) {
		w.interval = d
	}
}

// WithThreshold sets the idle threshold.
func WithThreshold(d time.Duration) Option {
	return func(w *Watchdog) {
		w.threshold = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watchdog) {
		w.logger = logger
	}
}

// WithObserver registers a callback invoked on every poll.
func WithObserver(o Observer) Option {
	return func(w *Watchdog) {
		w.observer = o
	}
}

// New creates a watchdog that calls cancel when it shuts down.
func New(clock *activity.Clock, cancel context.CancelFunc, opts ...Option) *Watchdog {
	w := &Watchdog{
		clock:     clock,
		cancel:    cancel,
		interval:  DefaultInterval,
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current state.
func (w *Watchdog) State() State {
	return State(w.state.Load())
}

// Run polls until the watchdog shuts down and returns the reason.
//
// served must be closed when the serving task exits. Run calls the cancel
// function exactly once before returning.
func (w *Watchdog) Run(ctx context.Context, served <-chan struct{}) Reason {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("idle watchdog started",
		"interval", w.interval.String(),
		"threshold", w.threshold.String(),
	)

	for {
		select {
		case <-ctx.Done():
			return w.shutdown(ReasonCanceled, w.clock.SinceLastTouch())
		case <-served:
			return w.shutdown(ReasonServerExited, w.clock.SinceLastTouch())
		case <-ticker.C:
			if reason, done := w.poll(served); done {
				return w.shutdown(reason, w.clock.SinceLastTouch())
			}
		}
	}
}

// poll performs one comparison against the clock.
func (w *Watchdog) poll(served <-chan struct{}) (Reason, bool) {
	select {
	case <-served:
		return ReasonServerExited, true
	default:
	}

	idle := w.clock.SinceLastTouch()
	if w.observer != nil {
		w.observer(idle, StateRunning)
	}
	if idle >= w.threshold {
		return ReasonIdle, true
	}
	return "", false
}

func (w *Watchdog) shutdown(reason Reason, idle time.Duration) Reason {
	w.state.Store(int32(StateShuttingDown))
	if w.observer != nil {
		w.observer(idle, StateShuttingDown)
	}

	w.logger.Info("idle watchdog shutting down server",
		"reason", string(reason),
		"idle", idle.Round(time.Millisecond).String(),
	)
	w.cancel()
	return reason
}

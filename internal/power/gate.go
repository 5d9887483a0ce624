package power

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Backlight switches the display backlight.
type Backlight interface {
	SetBacklight(on bool) error
}

// Gate is the time-of-day power state machine.
//
// The only memory a Gate keeps is the last state it emitted. The first
// evaluation always drives the backlight so hardware matches the computed
// state; afterwards the backlight is driven exactly once per transition.
//
// Evaluate is safe for concurrent use. Active and Changed are lock-free.
type Gate struct {
	window    Window
	backlight Backlight
	logger    *slog.Logger

	mu      sync.Mutex
	known   bool
	changed chan struct{}

	active atomic.Bool
}

// NewGate creates a Gate. Until the first evaluation the gate reports
// Active, matching a display that is on at boot. backlight may be nil.
func NewGate(window Window, backlight Backlight, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{
		window:    window,
		backlight: backlight,
		logger:    logger,
		changed:   make(chan struct{}),
	}
	g.active.Store(true)
	return g
}

// Evaluate computes the state for now and drives the backlight on a
// transition.
//
// A backlight failure is returned to the caller; the state is still
// recorded so the gate never retries the same transition.
func (g *Gate) Evaluate(now time.Time) (State, error) {
	state := g.window.StateAt(now)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.known && state == g.State() {
		return state, nil
	}

	first := !g.known
	g.known = true
	g.active.Store(state == Active)

	if !first {
		// wake anyone sleeping on the previous state
		close(g.changed)
		g.changed = make(chan struct{})
	}

	g.logger.Info("power state changed",
		"state", state.String(),
		"hour", now.Hour(),
		"initial", first,
	)

	if g.backlight != nil {
		if err := g.backlight.SetBacklight(state == Active); err != nil {
			return state, fmt.Errorf("set backlight %s: %w", state, err)
		}
	}
	return state, nil
}

// State returns the last emitted state.
func (g *Gate) State() State {
	if g.active.Load() {
		return Active
	}
	return Inactive
}

// Active reports whether the last emitted state is [Active].
func (g *Gate) Active() bool {
	return g.active.Load()
}

// Changed returns a channel that is closed on the next transition.
//
// Callers should grab the channel before checking [Gate.Active] so a
// transition between the two calls is not missed.
func (g *Gate) Changed() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.changed
}

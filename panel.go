package weatherpanel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jpalmerr/weatherpanel/dashboard"
	"github.com/jpalmerr/weatherpanel/internal/poller"
	"github.com/jpalmerr/weatherpanel/internal/power"
	"github.com/jpalmerr/weatherpanel/internal/render"
	"github.com/jpalmerr/weatherpanel/internal/server"
	"github.com/jpalmerr/weatherpanel/internal/store"
	"github.com/jpalmerr/weatherpanel/internal/supervisor"
)

const (
	defaultIndoorCadence  = 3 * time.Second
	defaultOutdoorCadence = 10 * time.Second
)

// Panel runs the indoor and outdoor pollers, the power gate and the render
// loop as one crash-only assembly.
//
// Create a Panel with [New] and run it with [Panel.Start]:
//
//	p, err := weatherpanel.New(
//	    weatherpanel.WithIndoor(indoor),
//	    weatherpanel.WithOutdoor(outdoor),
//	    weatherpanel.WithDisplay(display),
//	)
//	if err != nil {
//	    slog.Error("failed to create panel", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	p.Start(ctx) // blocks until context cancelled
//
// Any fault that escapes the per-fetch and per-tick handling tears the whole
// assembly down. A new one is built from scratch with empty slots after a
// backoff delay.
type Panel struct {
	indoor          Source
	outdoor         Source
	display         Display
	backlight       Backlight
	indoorCadence   time.Duration
	outdoorCadence  time.Duration
	inactiveCadence time.Duration
	renderInterval  time.Duration
	inactiveRecheck time.Duration
	window          power.Window
	clock           Clock
	restartPolicy   backoff.BackOff
	logger          *slog.Logger
	statusPort      int
	title           string
	frameCallbacks  []func(Frame)

	hub     *store.Hub
	current atomic.Pointer[assembly]
}

// assembly is the state owned by one generation.
type assembly struct {
	generation int
	state      *store.State
	gate       *power.Gate
}

// New creates a [Panel] with the given options.
//
// An indoor source, an outdoor source and a display are required. Defaults:
//   - Indoor cadence: 3 seconds
//   - Outdoor cadence: 10 seconds
//   - Inactive cadence: 1 hour
//   - Render interval: 1 second
//   - Inactive recheck: 1 minute
//   - Active hours: 9..23 inclusive
//   - Status server: disabled
func New(opts ...Option) (*Panel, error) {
	cfg := &panelConfig{
		indoorCadence:   defaultIndoorCadence,
		outdoorCadence:  defaultOutdoorCadence,
		inactiveCadence: poller.DefaultInactiveCadence,
		renderInterval:  render.DefaultInterval,
		inactiveRecheck: render.DefaultInactiveRecheck,
		window:          power.DefaultWindow,
		clock:           power.SystemClock{},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.indoor == nil {
		return nil, errors.New("indoor source is required")
	}
	if cfg.outdoor == nil {
		return nil, errors.New("outdoor source is required")
	}
	if cfg.display == nil {
		return nil, errors.New("display is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Panel{
		indoor:          cfg.indoor,
		outdoor:         cfg.outdoor,
		display:         cfg.display,
		backlight:       cfg.backlight,
		indoorCadence:   cfg.indoorCadence,
		outdoorCadence:  cfg.outdoorCadence,
		inactiveCadence: cfg.inactiveCadence,
		renderInterval:  cfg.renderInterval,
		inactiveRecheck: cfg.inactiveRecheck,
		window:          cfg.window,
		clock:           cfg.clock,
		restartPolicy:   cfg.restartPolicy,
		logger:          logger,
		statusPort:      cfg.statusPort,
		title:           cfg.title,
		frameCallbacks:  cfg.frameCallbacks,
		hub:             store.NewHub(),
	}, nil
}

// Start runs the panel until ctx is cancelled.
//
// Start is a blocking call. It starts the status server when a port is
// configured, then supervises the assembly, restarting it cold whenever it
// fails. Returns nil on cancellation and an error only if the status server
// cannot bind.
func (p *Panel) Start(ctx context.Context) error {
	p.logger.Info("weatherpanel starting",
		"indoor", p.indoor.Name(),
		"outdoor", p.outdoor.Name(),
		"active_hours", fmt.Sprintf("%d..%d", p.window.Start, p.window.End),
	)

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	defer p.closeSources()

	if p.statusPort > 0 {
		srv := server.NewServer(statusSource{p}, p.statusPort, dashboard.Assets, p.title, p.logger)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start status server: %w", err)
		}
	}

	sup := supervisor.New(p.restartPolicy, p.logger)
	err := sup.Run(ctx, p.assemble)

	p.logger.Info("weatherpanel stopped")
	return err
}

// assemble builds a fresh generation: empty slots, a new power gate, two
// pollers and the render loop.
func (p *Panel) assemble(generation int) ([]supervisor.Task, error) {
	state := store.NewState(p.hub)
	gate := power.NewGate(p.window, p.backlight, p.logger)

	// settle the power state before any poller looks at it
	if _, err := gate.Evaluate(p.clock.Now()); err != nil {
		return nil, err
	}
	p.current.Store(&assembly{generation: generation, state: state, gate: gate})

	loop := render.NewLoop(render.Config{
		State:           state,
		Display:         p.display,
		Gate:            gate,
		Clock:           p.clock,
		Interval:        p.renderInterval,
		InactiveRecheck: p.inactiveRecheck,
		OnFrame:         p.handleFrame,
		Logger:          p.logger,
	})

	indoor := poller.New(poller.Config{
		Source:          p.indoor,
		Slot:            state.Indoor,
		Gate:            gate,
		Cadence:         p.indoorCadence,
		InactiveCadence: p.inactiveCadence,
		Logger:          p.logger,
	})

	outdoor := poller.New(poller.Config{
		Source:          p.outdoor,
		Slot:            state.Outdoor,
		Gate:            gate,
		Cadence:         p.outdoorCadence,
		InactiveCadence: p.inactiveCadence,
		Logger:          p.logger,
	})

	return []supervisor.Task{
		{Name: "render", Run: loop.Run},
		{Name: "indoor poller", Run: indoor.Run},
		{Name: "outdoor poller", Run: outdoor.Run},
	}, nil
}

func (p *Panel) handleFrame(frame Frame) {
	for _, cb := range p.frameCallbacks {
		invokeCallbackSafe(cb, frame, p.logger)
	}
}

func (p *Panel) closeSources() {
	for _, src := range []Source{p.indoor, p.outdoor} {
		if c, ok := src.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// Generation returns the number of the running assembly, starting at 1.
// It is 0 before [Panel.Start] builds the first one.
func (p *Panel) Generation() int {
	if a := p.current.Load(); a != nil {
		return a.generation
	}
	return 0
}

// Snapshot returns the current outdoor and indoor slots. Both are empty
// before the first assembly starts.
func (p *Panel) Snapshot() (outdoor, indoor Snapshot) {
	a := p.current.Load()
	if a == nil {
		return Snapshot{Name: store.OutdoorName}, Snapshot{Name: store.IndoorName}
	}
	return a.state.Snapshot()
}

// PowerState returns the last state emitted by the running power gate.
func (p *Panel) PowerState() PowerState {
	if a := p.current.Load(); a != nil {
		return a.gate.State()
	}
	return PowerActive
}

// Subscribe returns a channel receiving every slot commit across restarts.
// Call [Panel.Unsubscribe] when done.
func (p *Panel) Subscribe() <-chan Snapshot {
	return p.hub.Subscribe()
}

// Unsubscribe cancels a subscription and closes its channel.
func (p *Panel) Unsubscribe(ch <-chan Snapshot) {
	p.hub.Unsubscribe(ch)
}

// statusSource exposes a panel to the status server.
type statusSource struct {
	p *Panel
}

func (s statusSource) Status() server.Status {
	outdoor, indoor := s.p.Snapshot()
	return server.Status{
		Power:      s.p.PowerState().String(),
		Healthy:    outdoor.Fresh && indoor.Fresh,
		Generation: s.p.Generation(),
		Indoor:     server.SlotStatus{Snapshot: indoor},
		Outdoor:    server.SlotStatus{Snapshot: outdoor},
	}
}

func (s statusSource) Subscribe() <-chan store.Snapshot {
	return s.p.Subscribe()
}

func (s statusSource) Unsubscribe(ch <-chan store.Snapshot) {
	s.p.Unsubscribe(ch)
}

// invokeCallbackSafe calls a frame callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Frame), frame Frame, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("frame callback panicked",
				"panic", r,
				"indicator", frame.Indicator.String(),
			)
		}
	}()
	cb(frame)
}

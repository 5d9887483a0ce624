package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/weatherpanel/internal/power"
	"github.com/jpalmerr/weatherpanel/internal/store"
)

const (
	// DefaultInterval is the active tick period.
	DefaultInterval = time.Second

	// DefaultInactiveRecheck is how often an inactive panel re-checks the
	// power state.
	DefaultInactiveRecheck = time.Minute
)

// PowerGate evaluates the power state and drives the backlight.
type PowerGate interface {
	Evaluate(now time.Time) (power.State, error)
}

// Frame describes what one tick pushed to the display.
type Frame struct {
	Text      map[Field]string `json:"text"`
	Indicator Color            `json:"indicator"`
	BlinkOn   bool             `json:"blink_on"`
	Healthy   bool             `json:"healthy"`
	Icon      string           `json:"icon,omitempty"`
	Fault     string           `json:"fault,omitempty"`
	At        time.Time        `json:"at"`
}

// Config configures a [Loop].
type Config struct {
	State   *store.State
	Display Display
	Gate    PowerGate
	Clock   power.Clock

	// Interval is the active tick period. Defaults to [DefaultInterval].
	Interval time.Duration

	// InactiveRecheck is the sleep between power checks while inactive.
	// Defaults to [DefaultInactiveRecheck].
	InactiveRecheck time.Duration

	// OnFrame, if set, is called after every active tick.
	OnFrame func(Frame)

	Logger *slog.Logger
}

// Loop is the render loop. It is not safe for concurrent use; one goroutine
// runs it.
type Loop struct {
	state           *store.State
	display         Display
	gate            PowerGate
	clock           power.Clock
	interval        time.Duration
	inactiveRecheck time.Duration
	onFrame         func(Frame)
	logger          *slog.Logger

	heartbeat Heartbeat
	icon      string
}

// NewLoop creates a render [Loop].
func NewLoop(cfg Config) *Loop {
	l := &Loop{
		state:           cfg.State,
		display:         cfg.Display,
		gate:            cfg.Gate,
		clock:           cfg.Clock,
		interval:        cfg.Interval,
		inactiveRecheck: cfg.InactiveRecheck,
		onFrame:         cfg.OnFrame,
		logger:          cfg.Logger,
	}
	if l.clock == nil {
		l.clock = power.SystemClock{}
	}
	if l.interval <= 0 {
		l.interval = DefaultInterval
	}
	if l.inactiveRecheck <= 0 {
		l.inactiveRecheck = DefaultInactiveRecheck
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Run ticks until ctx is cancelled or a fatal fault occurs.
//
// While the gate reports inactive no display work is done and the loop
// sleeps the inactive recheck interval instead of the tick interval.
// Run returns nil on cancellation and an error for fatal faults: a failing
// backlight or a lost display.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.display.HideIcon(); err != nil && errors.Is(err, ErrDisplayLost) {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		state, err := l.gate.Evaluate(l.clock.Now())
		if err != nil {
			return fmt.Errorf("power gate: %w", err)
		}

		wait := l.interval
		if state == power.Active {
			frame, err := l.Tick()
			if err != nil {
				return err
			}
			if l.onFrame != nil {
				l.onFrame(frame)
			}
		} else {
			wait = l.inactiveRecheck
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Tick performs one active render pass.
//
// Any fault while drawing forces the indicator red for this tick and is not
// returned. The heartbeat advances on every tick, faulted or not. The
// returned error is non-nil only for [ErrDisplayLost].
func (l *Loop) Tick() (Frame, error) {
	frame := Frame{
		At:      l.clock.Now(),
		BlinkOn: l.heartbeat.BlinkOn(),
	}
	defer l.heartbeat.Flip()

	err := l.safeDraw(&frame)
	if err == nil {
		return frame, nil
	}
	if errors.Is(err, ErrDisplayLost) {
		return frame, err
	}

	l.logger.Error("render fault", "error", err.Error())
	frame.Indicator = ColorRed
	frame.Fault = err.Error()

	if err := l.display.SetIndicator(ColorRed); err != nil {
		if errors.Is(err, ErrDisplayLost) {
			return frame, err
		}
		l.logger.Warn("failed to force indicator red", "error", err.Error())
	}
	return frame, nil
}

// safeDraw runs the draw steps with panic recovery.
func (l *Loop) safeDraw(frame *Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			l.logger.Error("render panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("render panic (correlation_id: %s)", correlationID)
		}
	}()
	return l.draw(frame)
}

func (l *Loop) draw(frame *Frame) error {
	outdoor, indoor := l.state.Snapshot()
	frame.Healthy = outdoor.Fresh && indoor.Fresh
	frame.Text = FormatFields(outdoor, indoor)

	for _, field := range Fields {
		if err := l.display.SetText(field, frame.Text[field]); err != nil {
			return fmt.Errorf("set %s: %w", field, err)
		}
	}

	if err := l.syncIcon(outdoor); err != nil {
		return err
	}
	frame.Icon = l.icon

	frame.Indicator = IndicatorColor(frame.BlinkOn, frame.Healthy)
	if err := l.display.SetIndicator(frame.Indicator); err != nil {
		return fmt.Errorf("set indicator: %w", err)
	}
	return nil
}

// syncIcon pushes the outdoor icon only when its code changed.
func (l *Loop) syncIcon(outdoor store.Snapshot) error {
	code := ""
	if outdoor.Latest != nil {
		code = outdoor.Latest.Icon
	}
	if code == l.icon {
		return nil
	}

	if code == "" {
		if err := l.display.HideIcon(); err != nil {
			return fmt.Errorf("hide icon: %w", err)
		}
	} else if err := l.display.ShowIcon(code); err != nil {
		return fmt.Errorf("show icon %s: %w", code, err)
	}
	l.icon = code
	return nil
}

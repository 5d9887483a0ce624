package weatherpanel

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jpalmerr/weatherpanel/internal/power"
)

// panelConfig holds mutable state during Panel construction.
type panelConfig struct {
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
}

// Option is a function that configures a [Panel] during construction.
//
// Options return an error if validation fails.
type Option func(*panelConfig) error

// WithIndoor sets the indoor sensor source. Required.
func WithIndoor(src Source) Option {
	return func(cfg *panelConfig) error {
		if src == nil {
			return errors.New("indoor source cannot be nil")
		}
		cfg.indoor = src
		return nil
	}
}

// WithOutdoor sets the outdoor weather source. Required.
func WithOutdoor(src Source) Option {
	return func(cfg *panelConfig) error {
		if src == nil {
			return errors.New("outdoor source cannot be nil")
		}
		cfg.outdoor = src
		return nil
	}
}

// WithDisplay sets the display the render loop pushes to. Required.
func WithDisplay(d Display) Option {
	return func(cfg *panelConfig) error {
		if d == nil {
			return errors.New("display cannot be nil")
		}
		cfg.display = d
		return nil
	}
}

// WithBacklight sets the backlight driven by the power gate. Without one
// the gate still suppresses rendering but switches nothing.
func WithBacklight(b Backlight) Option {
	return func(cfg *panelConfig) error {
		if b == nil {
			return errors.New("backlight cannot be nil")
		}
		cfg.backlight = b
		return nil
	}
}

func positive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// WithIndoorCadence sets the sleep between indoor fetches while active.
// Defaults to 3 seconds.
func WithIndoorCadence(d time.Duration) Option {
	return func(cfg *panelConfig) error {
		if err := positive("indoor cadence", d); err != nil {
			return err
		}
		cfg.indoorCadence = d
		return nil
	}
}

// WithOutdoorCadence sets the sleep between outdoor fetches while active.
// Defaults to 10 seconds.
func WithOutdoorCadence(d time.Duration) Option {
	return func(cfg *panelConfig) error {
		if err := positive("outdoor cadence", d); err != nil {
			return err
		}
		cfg.outdoorCadence = d
		return nil
	}
}

// WithInactiveCadence sets how long pollers sleep between power checks
// while the display is off. Defaults to 1 hour; a power transition wakes
// them early.
func WithInactiveCadence(d time.Duration) Option {
	return func(cfg *panelConfig) error {
		if err := positive("inactive cadence", d); err != nil {
			return err
		}
		cfg.inactiveCadence = d
		return nil
	}
}

// WithRenderInterval sets the render tick period. Defaults to 1 second.
func WithRenderInterval(d time.Duration) Option {
	return func(cfg *panelConfig) error {
		if err := positive("render interval", d); err != nil {
			return err
		}
		cfg.renderInterval = d
		return nil
	}
}

// WithInactiveRecheck sets how often the render loop re-checks the power
// state while the display is off. Defaults to 1 minute.
func WithInactiveRecheck(d time.Duration) Option {
	return func(cfg *panelConfig) error {
		if err := positive("inactive recheck", d); err != nil {
			return err
		}
		cfg.inactiveRecheck = d
		return nil
	}
}

// WithActiveHours sets the inclusive local-hour window in which the display
// is lit. Defaults to 9..23. A window with start > end wraps past midnight.
func WithActiveHours(start, end int) Option {
	return func(cfg *panelConfig) error {
		w := power.Window{Start: start, End: end}
		if err := w.Validate(); err != nil {
			return err
		}
		cfg.window = w
		return nil
	}
}

// WithClock replaces the wall clock. Intended for tests and simulations.
func WithClock(c Clock) Option {
	return func(cfg *panelConfig) error {
		if c == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = c
		return nil
	}
}

// WithRestartBackoff sets the delay policy between cold restarts. The panel
// never gives up: a policy returning backoff.Stop is reset and reused.
// Defaults to exponential backoff from 1s to 1m.
func WithRestartBackoff(b backoff.BackOff) Option {
	return func(cfg *panelConfig) error {
		if b == nil {
			return errors.New("restart backoff cannot be nil")
		}
		cfg.restartPolicy = b
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the panel.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *panelConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithStatusPort enables the local status server on the given port.
// 0, the default, disables it.
//
// Returns an error if the port is outside 0-65535.
func WithStatusPort(port int) Option {
	return func(cfg *panelConfig) error {
		if port < 0 || port > 65535 {
			return errors.New("status port must be between 0 and 65535")
		}
		cfg.statusPort = port
		return nil
	}
}

// WithTitle sets the status page title. Defaults to "Weather Panel".
func WithTitle(title string) Option {
	return func(cfg *panelConfig) error {
		cfg.title = title
		return nil
	}
}

// WithFrameCallback registers a function called after every active
// render tick with the [Frame] that was pushed.
//
// Callbacks run synchronously on the render goroutine and must not block.
// Panics are recovered and logged. Nil callbacks are ignored.
func WithFrameCallback(cb func(Frame)) Option {
	return func(cfg *panelConfig) error {
		if cb == nil {
			return nil
		}
		cfg.frameCallbacks = append(cfg.frameCallbacks, cb)
		return nil
	}
}

package power

import (
	"fmt"
	"time"
)

// State is the display power state.
type State int

const (
	// Inactive means the display is off and polling is degraded.
	Inactive State = iota
	// Active means the display is on and rendering.
	Active
)

// String returns "active" or "inactive".
func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Window is an inclusive range of active hours.
//
// When Start <= End the window is Start..End. When Start > End the window
// wraps midnight, e.g. {Start: 22, End: 2} is active for 22, 23, 0, 1, 2.
type Window struct {
	Start int
	End   int
}

// DefaultWindow is active from 09:00 through the whole 23:00 hour.
var DefaultWindow = Window{Start: 9, End: 23}

// Validate checks that both bounds are valid hours.
func (w Window) Validate() error {
	if w.Start < 0 || w.Start > 23 {
		return fmt.Errorf("active window start must be between 0 and 23, got %d", w.Start)
	}
	if w.End < 0 || w.End > 23 {
		return fmt.Errorf("active window end must be between 0 and 23, got %d", w.End)
	}
	return nil
}

// Contains reports whether hour falls inside the window.
func (w Window) Contains(hour int) bool {
	if w.Start <= w.End {
		return hour >= w.Start && hour <= w.End
	}
	return hour >= w.Start || hour <= w.End
}

// StateAt returns the power state for the hour of t.
func (w Window) StateAt(t time.Time) State {
	if w.Contains(t.Hour()) {
		return Active
	}
	return Inactive
}

// IsActive reports whether hour is inside [DefaultWindow]:
// true for 9..23, false for 0..8.
func IsActive(hour int) bool {
	return DefaultWindow.Contains(hour)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to [Clock].
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

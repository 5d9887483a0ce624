package display

import (
	"errors"

	"github.com/jpalmerr/weatherpanel/internal/power"
	"github.com/jpalmerr/weatherpanel/internal/render"
)

// Multi fans every call out to all displays. Every display is called even
// if an earlier one fails; the returned error joins all failures, so
// errors.Is still finds [render.ErrDisplayLost].
type Multi []render.Display

// SetText implements render.Display.
func (m Multi) SetText(field render.Field, text string) error {
	var errs []error
	for _, d := range m {
		errs = append(errs, d.SetText(field, text))
	}
	return errors.Join(errs...)
}

// SetIndicator implements render.Display.
func (m Multi) SetIndicator(color render.Color) error {
	var errs []error
	for _, d := range m {
		errs = append(errs, d.SetIndicator(color))
	}
	return errors.Join(errs...)
}

// ShowIcon implements render.Display.
func (m Multi) ShowIcon(code string) error {
	var errs []error
	for _, d := range m {
		errs = append(errs, d.ShowIcon(code))
	}
	return errors.Join(errs...)
}

// HideIcon implements render.Display.
func (m Multi) HideIcon() error {
	var errs []error
	for _, d := range m {
		errs = append(errs, d.HideIcon())
	}
	return errors.Join(errs...)
}

// Backlights fans SetBacklight out to several backlights.
type Backlights []power.Backlight

// SetBacklight implements power.Backlight.
func (b Backlights) SetBacklight(on bool) error {
	var errs []error
	for _, bl := range b {
		errs = append(errs, bl.SetBacklight(on))
	}
	return errors.Join(errs...)
}

// BacklightsOf collects every display that can also switch a backlight.
func BacklightsOf(displays ...render.Display) Backlights {
	var out Backlights
	for _, d := range displays {
		if bl, ok := d.(power.Backlight); ok {
			out = append(out, bl)
		}
	}
	return out
}

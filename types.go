package weatherpanel

import (
	"github.com/jpalmerr/weatherpanel/internal/poller"
	"github.com/jpalmerr/weatherpanel/internal/power"
	"github.com/jpalmerr/weatherpanel/internal/render"
	"github.com/jpalmerr/weatherpanel/internal/store"
)

// Reading is one successful measurement: temperature in °C, relative
// humidity in percent, pressure in hPa and an optional condition icon code.
type Reading = store.Reading

// Snapshot is the immutable state of one source slot at one instant.
//
// Latest is nil until the first successful fetch. Fresh is true only when
// the most recent fetch attempt succeeded; a failure keeps Latest so stale
// values stay on screen.
type Snapshot = store.Snapshot

// Source performs a single bounded fetch. Implementations must not retry
// internally; the panel re-polls on its own cadence.
type Source = poller.Source

// HTTPSource is the JSON-over-HTTP [Source] returned by [NewIndoorSource]
// and [NewOutdoorSource].
type HTTPSource = poller.HTTPSource

// Display is the pixel display capability the render loop pushes to.
//
// An error wrapping [ErrDisplayLost] is fatal and restarts the panel; any
// other error only turns the indicator red for that tick.
type Display = render.Display

// Backlight switches the display backlight. It is driven once per power
// transition.
type Backlight = power.Backlight

// Field identifies one of the six value fields on the panel.
type Field = render.Field

// Value fields.
const (
	IndoorTemperature  = render.IndoorTemperature
	IndoorHumidity     = render.IndoorHumidity
	IndoorPressure     = render.IndoorPressure
	OutdoorTemperature = render.OutdoorTemperature
	OutdoorHumidity    = render.OutdoorHumidity
	OutdoorPressure    = render.OutdoorPressure
)

// Color is a 24-bit RGB indicator color.
type Color = render.Color

// Indicator colors.
const (
	ColorOff   = render.ColorOff
	ColorGreen = render.ColorGreen
	ColorRed   = render.ColorRed
)

// PowerState is whether the display is lit.
type PowerState = power.State

// Power states.
const (
	PowerInactive = power.Inactive
	PowerActive   = power.Active
)

// Frame describes what one render tick pushed to the display.
type Frame = render.Frame

// Clock supplies wall-clock time to the power gate and render loop.
type Clock = power.Clock

// ClockFunc adapts a function to [Clock].
type ClockFunc = power.ClockFunc

// ErrDisplayLost marks an unrecoverable display fault.
var ErrDisplayLost = render.ErrDisplayLost

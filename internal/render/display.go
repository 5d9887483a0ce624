package render

import (
	"errors"
	"fmt"
)

// ErrDisplayLost marks a display fault that cannot be recovered in place.
// A Display returns an error wrapping it when its device is gone.
var ErrDisplayLost = errors.New("display lost")

// Field identifies one value field on the panel.
type Field int

const (
	IndoorTemperature Field = iota
	IndoorHumidity
	IndoorPressure
	OutdoorTemperature
	OutdoorHumidity
	OutdoorPressure
)

// Fields lists every value field in push order (outdoor first).
var Fields = []Field{
	OutdoorTemperature,
	OutdoorHumidity,
	OutdoorPressure,
	IndoorTemperature,
	IndoorHumidity,
	IndoorPressure,
}

var fieldNames = map[Field]string{
	IndoorTemperature:  "indoor_temperature",
	IndoorHumidity:     "indoor_humidity",
	IndoorPressure:     "indoor_pressure",
	OutdoorTemperature: "outdoor_temperature",
	OutdoorHumidity:    "outdoor_humidity",
	OutdoorPressure:    "outdoor_pressure",
}

// String returns the snake_case field name.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// MarshalText implements encoding.TextMarshaler so fields work as JSON keys.
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Color is a 24-bit RGB value.
type Color uint32

const (
	ColorOff   Color = 0x000000
	ColorGreen Color = 0x00FF00
	ColorRed   Color = 0xFF0000
)

// RGB splits the color into its components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// String returns the color as #RRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("#%06X", uint32(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Display is the pixel display capability.
//
// All methods are synchronous and side-effect only. An error wrapping
// [ErrDisplayLost] is treated as fatal; any other error is a render fault
// for the current tick.
type Display interface {
	SetText(field Field, text string) error
	SetIndicator(color Color) error
	// ShowIcon shows the weather icon for a condition code such as "10d".
	ShowIcon(code string) error
	HideIcon() error
}

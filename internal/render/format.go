package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jpalmerr/weatherpanel/internal/store"
)

// temperatureWidth keeps the temperature label from shifting when the digit
// count changes.
const temperatureWidth = 5

// Placeholders shown before a slot has received any reading.
const (
	placeholderTemperature = "0ºC"
	placeholderHumidity    = "0%"
	placeholderPressure    = "0 hPa"
)

// FormatTemperature formats degrees Celsius to one decimal, padded on the
// right to a fixed rune width.
func FormatTemperature(celsius float64) string {
	return padRight(fmt.Sprintf("%.1fºC", celsius), temperatureWidth)
}

// FormatHumidity formats relative humidity to one decimal.
func FormatHumidity(percent float64) string {
	return fmt.Sprintf("%.1f%%", percent)
}

// FormatPressure formats pressure as whole hPa.
func FormatPressure(hpa float64) string {
	return fmt.Sprintf("%.0f hPa", hpa)
}

// FormatSnapshot returns the temperature, humidity and pressure texts for a
// slot. Stale readings are formatted like fresh ones.
func FormatSnapshot(s store.Snapshot) (temperature, humidity, pressure string) {
	if s.Latest == nil {
		return padRight(placeholderTemperature, temperatureWidth), placeholderHumidity, placeholderPressure
	}
	r := s.Latest
	return FormatTemperature(r.Temperature), FormatHumidity(r.Humidity), FormatPressure(r.Pressure)
}

// FormatFields formats both slots into the six field texts.
func FormatFields(outdoor, indoor store.Snapshot) map[Field]string {
	ot, oh, op := FormatSnapshot(outdoor)
	it, ih, ip := FormatSnapshot(indoor)
	return map[Field]string{
		OutdoorTemperature: ot,
		OutdoorHumidity:    oh,
		OutdoorPressure:    op,
		IndoorTemperature:  it,
		IndoorHumidity:     ih,
		IndoorPressure:     ip,
	}
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

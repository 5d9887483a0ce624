// Package power decides whether the panel is active from the wall-clock hour.
//
// The [Gate] is edge-triggered: it drives the [Backlight] only when the
// computed state differs from the last one it emitted, and it broadcasts
// each transition so sleeping pollers can re-check immediately.
package power

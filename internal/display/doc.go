// Package display provides concrete Display and Backlight capabilities.
//
// [Terminal] draws the panel in a terminal with tview, [MQTTMirror]
// republishes every frame to an MQTT broker, [Log] writes frames to slog for
// headless runs, and [GPIOBacklight] drives a backlight pin through periph.io.
// [Multi] and [Backlights] fan a single call out to several implementations.
package display

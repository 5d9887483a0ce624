// Package render repaints the panel once per tick.
//
// A [Loop] tick snapshots both reading slots, formats the six value fields,
// pushes them to a [Display], and drives the heartbeat indicator. Faults
// inside a tick are contained: the indicator is forced red for that tick and
// the loop carries on. Only [ErrDisplayLost] escapes, for the supervisor to
// handle with a cold restart.
package render

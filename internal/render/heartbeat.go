package render

// Heartbeat is the blinking status indicator state.
//
// The zero value starts with the indicator dark. Each tick reads the phase
// and then flips it, so successive ticks observe false, true, false, ...
type Heartbeat struct {
	blinkOn bool
}

// BlinkOn returns the current phase.
func (h *Heartbeat) BlinkOn() bool {
	return h.blinkOn
}

// Flip advances to the next phase and returns it.
func (h *Heartbeat) Flip() bool {
	h.blinkOn = !h.blinkOn
	return h.blinkOn
}

// IndicatorColor returns the indicator color for one tick.
//
// In the dark phase the indicator is off regardless of health. In the lit
// phase it is green when both sources are fresh and red otherwise.
func IndicatorColor(blinkOn, healthy bool) Color {
	switch {
	case !blinkOn:
		return ColorOff
	case healthy:
		return ColorGreen
	default:
		return ColorRed
	}
}

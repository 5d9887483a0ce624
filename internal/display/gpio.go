package display

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// DefaultBacklightPin is the backlight pin on the reference board.
const DefaultBacklightPin = "GPIO4"

// GPIOBacklight switches a backlight wired to a GPIO output.
type GPIOBacklight struct {
	pin       gpio.PinOut
	activeLow bool
}

// NewGPIOBacklight wraps an already opened pin. With activeLow the
// backlight is on when the pin is driven Low.
func NewGPIOBacklight(pin gpio.PinOut, activeLow bool) *GPIOBacklight {
	return &GPIOBacklight{pin: pin, activeLow: activeLow}
}

// OpenGPIOBacklight initialises the host drivers and opens the named pin.
func OpenGPIOBacklight(name string, activeLow bool) (*GPIOBacklight, error) {
	if name == "" {
		name = DefaultBacklightPin
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return NewGPIOBacklight(pin, activeLow), nil
}

// SetBacklight implements power.Backlight.
func (b *GPIOBacklight) SetBacklight(on bool) error {
	level := gpio.Level(on != b.activeLow)
	if err := b.pin.Out(level); err != nil {
		return fmt.Errorf("backlight %s: %w", b.pin.Name(), err)
	}
	return nil
}

// Pin returns the name of the underlying pin.
func (b *GPIOBacklight) Pin() string {
	return b.pin.Name()
}

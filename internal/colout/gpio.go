package colout

import (
	"fmt"
	"sync/atomic"

	"libdb.so/povglow/internal/render"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// GPIO drives one output pin per column bit. Pin i shows bit i.
type GPIO struct {
	pins     []gpio.PinOut
	failures atomic.Uint64
}

var _ render.Output = (*GPIO)(nil)

// NewGPIO creates a GPIO output and turns every pin off.
func NewGPIO(pins []gpio.PinOut) (*GPIO, error) {
	if len(pins) < 1 || len(pins) > 8 {
		return nil, fmt.Errorf("need 1 to 8 column pins, got %d", len(pins))
	}
	for i, p := range pins {
		if p == nil {
			return nil, fmt.Errorf("column pin %d is nil", i)
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("failed to set column pin %s low: %w", p, err)
		}
	}
	return &GPIO{pins: pins}, nil
}

// OpenGPIO looks the named pins up in the periph registry.
func OpenGPIO(names []string) (*GPIO, error) {
	pins := make([]gpio.PinOut, len(names))
	for i, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("GPIO pin %s not found", name)
		}
		pins[i] = p
	}
	return NewGPIO(pins)
}

// WriteColumn implements render.Output. Pin errors are counted rather than
// returned.
func (g *GPIO) WriteColumn(col uint8) {
	for i, p := range g.pins {
		if err := p.Out(gpio.Level(col&(1<<uint(i)) != 0)); err != nil {
			g.failures.Add(1)
		}
	}
}

// Failures returns the number of failed pin writes so far.
func (g *GPIO) Failures() uint64 {
	return g.failures.Load()
}

// Halt turns every pin off.
func (g *GPIO) Halt() error {
	for _, p := range g.pins {
		if err := p.Out(gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

// Package power selects the sleep depth of the controller from the work the
// renderer and the sync engine report.
package power

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Depth is how deeply the controller may sleep.
type Depth uint8

const (
	// Run means output is pending and nothing may sleep.
	Run Depth = iota
	// Idle means only a sync search window is open. The fixed tick and the
	// radial tick keep running so the next pulse can be measured.
	Idle
	// PowerDown means no work is outstanding. Radial ticks stop until a pulse
	// or a key press wakes the controller.
	PowerDown
)

// String returns a string representation of the depth.
func (d Depth) String() string {
	switch d {
	case Run:
		return "run"
	case Idle:
		return "idle"
	case PowerDown:
		return "power-down"
	default:
		return fmt.Sprintf("Depth(%d)", d)
	}
}

// Select returns the deepest sleep compatible with the reported work.
func Select(renderActive, syncLocked, syncSearching bool) Depth {
	switch {
	case renderActive, syncLocked:
		return Run
	case syncSearching:
		return Idle
	default:
		return PowerDown
	}
}

// Controller tracks the current depth. Depth may be read from any
// goroutine; Update must only be called from the foreground loop.
type Controller struct {
	logger *slog.Logger
	depth  atomic.Uint32
}

// NewController creates a controller that starts in Run.
func NewController(logger *slog.Logger) *Controller {
	return &Controller{logger: logger}
}

// Depth returns the current depth.
func (c *Controller) Depth() Depth {
	return Depth(c.depth.Load())
}

// Awake returns true unless the controller is powered down.
func (c *Controller) Awake() bool {
	return c.Depth() != PowerDown
}

// Update selects the depth for the reported work and returns it.
func (c *Controller) Update(renderActive, syncLocked, syncSearching bool) Depth {
	depth := Select(renderActive, syncLocked, syncSearching)
	if old := Depth(c.depth.Swap(uint32(depth))); old != depth {
		c.logger.Debug(
			"sleep depth changed",
			"from", old,
			"to", depth)
	}
	return depth
}

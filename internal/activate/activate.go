// Package activate implements the activation controller: the foreground
// logic that starts a new message when the button is pressed.
package activate

import (
	"log/slog"

	"libdb.so/povglow/internal/font"
	"libdb.so/povglow/internal/msgtab"
	"libdb.so/povglow/internal/radial"
	"libdb.so/povglow/internal/render"
	"libdb.so/povglow/internal/scroll"
)

// ButtonMask is the debouncer bit of the activation button.
const ButtonMask uint8 = 1 << 0

// Opts configures a Controller.
type Opts struct {
	Driver    *render.Driver
	Messages  *msgtab.Cycle
	Font      font.Font
	Direction scroll.Direction
	// Radial, if not nil, makes a press lay the message out on the radial
	// pattern instead of scrolling it.
	Radial *radial.Holder
	// RadialOffset is the column the radial text starts at.
	RadialOffset int
	Logger       *slog.Logger
}

// Controller reacts to debounced button presses.
type Controller struct {
	opts Opts
}

// New creates a controller.
func New(opts Opts) *Controller {
	return &Controller{opts: opts}
}

// Update runs once per tick update. While a message is scrolling it does
// nothing. Otherwise a pending press starts the next message; with no press
// the column is blanked. It returns true if a message was started.
func (c *Controller) Update() bool {
	d := c.opts.Driver
	if d.Rendering() {
		return false
	}

	if c.opts.Radial != nil {
		return c.updateRadial()
	}

	var msg []byte
	var length int
	var started bool

	d.Critical(func(s *render.State) {
		if !s.Keys.TakePress(ButtonMask) {
			s.Output.WriteColumn(0x00)
			return
		}

		next, ok := c.opts.Messages.Next()
		if !ok {
			return
		}

		s.Scroll.Init(next, c.opts.Font, c.opts.Direction)
		s.Scroll.Activate()

		msg = next
		length = s.Scroll.Len()
		started = true
	})

	if started {
		c.opts.Logger.Debug(
			"started message",
			"message", string(trim(msg)),
			"columns", length*c.opts.Font.Width,
			"direction", c.opts.Direction)
	}

	return started
}

func (c *Controller) updateRadial() bool {
	var pressed bool
	c.opts.Driver.Critical(func(s *render.State) {
		pressed = s.Keys.TakePress(ButtonMask)
	})
	if !pressed {
		return false
	}

	msg, ok := c.opts.Messages.Next()
	if !ok {
		return false
	}

	n := radial.Text(c.opts.Radial.Back(), msg, c.opts.Font, c.opts.Direction, c.opts.RadialOffset)

	c.opts.Driver.Critical(func(s *render.State) {
		if s.Sync != nil {
			s.Sync.SetPattern(c.opts.Radial.Swap())
		}
	})

	c.opts.Logger.Debug(
		"laid out radial message",
		"message", string(trim(msg)),
		"columns", n)

	return true
}

func trim(msg []byte) []byte {
	if n := len(msg); n > 0 && msg[n-1] == 0 {
		return msg[:n-1]
	}
	return msg
}

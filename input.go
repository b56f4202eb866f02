package povglow

import (
	"time"

	"libdb.so/povglow/internal/activate"
	"libdb.so/povglow/internal/render"
	"periph.io/x/conn/v3/gpio"
)

// pinSampler samples an active-low button with a pull-up.
func pinSampler(pin gpio.PinIn) render.KeySampler {
	return func() uint8 {
		if pin.Read() == gpio.Low {
			return activate.ButtonMask
		}
		return 0
	}
}

// autoPressTicks is how long an automatic press is held down. It must be
// longer than the debounce window.
const autoPressTicks = 8

// newAutoPresser returns a sampler that presses the button for a few ticks
// once every period ticks. The first press happens right away.
func newAutoPresser(period int64) render.KeySampler {
	period = max(period, 2*autoPressTicks)

	var tick int64
	return func() uint8 {
		t := tick
		tick = (tick + 1) % period
		if t < autoPressTicks {
			return activate.ButtonMask
		}
		return 0
	}
}

// counter is a free-running counter clocked at a fixed rate. It stands in
// for the hardware timer the radial handler measures elapsed time with, and
// wraps the same way.
type counter struct {
	start time.Time
	hz    int64
}

func newCounter(hz int64) counter {
	return counter{start: time.Now(), hz: hz}
}

func (c counter) now() uint32 {
	return c.at(time.Since(c.start))
}

func (c counter) at(d time.Duration) uint32 {
	// Split the conversion so long uptimes do not overflow.
	sec := int64(d / time.Second)
	rem := int64(d % time.Second)
	return uint32(sec*c.hz + rem*c.hz/int64(time.Second))
}

// duration converts a number of counter ticks to a duration, never shorter
// than a microsecond.
func (c counter) duration(ticks uint32) time.Duration {
	d := time.Duration(int64(ticks) * int64(time.Second) / c.hz)
	return max(d, time.Microsecond)
}

// Package rotsync implements the rotational sync engine. It measures the
// time between sync pulses, one per revolution, and derives the per-column
// interval that keeps the angular pitch of radial columns constant.
//
// The engine is driven by three handlers: OnTick at a fixed coarse rate,
// OnRadialTick at the current column interval, and OnPulseEdge on every
// sensor transition. None of them block, allocate or loop.
package rotsync

import (
	"math"
	"sync/atomic"
)

// Config is the timing configuration of the engine.
type Config struct {
	// LockoutTicks is the number of coarse ticks after an accepted pulse
	// during which further edges are ignored.
	LockoutTicks uint16
	// SearchTicks is the number of coarse ticks after an accepted pulse
	// during which the next pulse is trusted to carry a period. A wheel
	// slower than one revolution per window never locks.
	SearchTicks uint16
	// RatioShift converts a revolution period to a column interval:
	// interval = period >> RatioShift. A revolution has 1<<RatioShift
	// columns.
	RatioShift uint8
	// MinInterval is the plausibility floor. Candidate intervals at or
	// below it are rejected.
	MinInterval uint32
	// InitialInterval is the column interval used before the first lock.
	InitialInterval uint32
}

// DefaultConfig returns the configuration for a 400 Hz coarse tick and a
// 1 MHz counter: 10 ms lockout, 1 s search window, 256 columns per
// revolution, spinning no faster than 6000 rpm.
func DefaultConfig() Config {
	return Config{
		LockoutTicks:    4,
		SearchTicks:     400,
		RatioShift:      8,
		MinInterval:     39,
		InitialInterval: 1000,
	}
}

// Columns returns the number of columns in one revolution.
func (c Config) Columns() int {
	return 1 << c.RatioShift
}

// State is a copy of the engine state.
type State struct {
	Locked           bool
	Searching        bool
	LockoutRemaining uint16
	SearchRemaining  uint16
	Accumulated      uint32
	Interval         uint32
	RadialIndex      int
}

// Engine is the sync state machine. An Engine must be created with New.
//
// All methods except Locked must be serialized by the caller: the handlers
// never run concurrently with each other or with SetPattern.
type Engine struct {
	cfg     Config
	pattern []uint8

	locked atomic.Bool

	lockoutRemaining uint16
	searchRemaining  uint16
	accumulated      uint32
	interval         uint32
	radialIndex      int
}

// New creates an unlocked engine.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		interval: cfg.InitialInterval,
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetPattern sets the columns emitted over one revolution. The slice is not
// copied.
func (e *Engine) SetPattern(pattern []uint8) {
	e.pattern = pattern
}

// Locked returns true if the column interval is currently trusted. It is
// safe to call concurrently with the handlers.
func (e *Engine) Locked() bool {
	return e.locked.Load()
}

// Searching returns true while the engine is within a window that accepts
// the next pulse as a valid period measurement.
func (e *Engine) Searching() bool {
	return e.searchRemaining > 0
}

// Interval returns the current column interval in counter ticks.
func (e *Engine) Interval() uint32 {
	return e.interval
}

// RadialIndex returns the current column within the revolution.
func (e *Engine) RadialIndex() int {
	return e.radialIndex
}

// Snapshot returns a copy of the engine state.
func (e *Engine) Snapshot() State {
	return State{
		Locked:           e.locked.Load(),
		Searching:        e.searchRemaining > 0,
		LockoutRemaining: e.lockoutRemaining,
		SearchRemaining:  e.searchRemaining,
		Accumulated:      e.accumulated,
		Interval:         e.interval,
		RadialIndex:      e.radialIndex,
	}
}

// OnTick advances the lockout and search windows by one coarse tick.
func (e *Engine) OnTick() {
	if e.lockoutRemaining > 0 {
		e.lockoutRemaining--
	}
	if e.searchRemaining > 0 {
		e.searchRemaining--
	}
}

// OnRadialTick accounts for elapsed counter ticks since the previous call
// and returns the column to display. elapsed must be the true counter delta
// measured by the caller, not the programmed interval.
func (e *Engine) OnRadialTick(elapsed uint32) uint8 {
	if e.accumulated > math.MaxUint32-elapsed {
		e.accumulated = math.MaxUint32
	} else {
		e.accumulated += elapsed
	}

	var col uint8
	if e.locked.Load() {
		if e.radialIndex < len(e.pattern) {
			col = e.pattern[e.radialIndex]
			e.radialIndex++
		}
		if e.searchRemaining == 0 {
			e.locked.Store(false)
		}
	}

	return col
}

// OnPulseEdge handles a sensor transition. Only falling edges outside the
// lockout window are considered.
func (e *Engine) OnPulseEdge(falling bool) {
	if e.lockoutRemaining > 0 || !falling {
		return
	}

	if e.searchRemaining > 0 {
		// The shift drops the fractional part of the period: the interval is
		// biased short by up to one counter tick.
		candidate := e.accumulated >> e.cfg.RatioShift
		if candidate > e.cfg.MinInterval {
			e.interval = candidate
			e.radialIndex = 0
			e.locked.Store(true)
		} else {
			e.locked.Store(false)
		}
	}

	e.searchRemaining = e.cfg.SearchTicks
	e.lockoutRemaining = e.cfg.LockoutTicks
	e.accumulated = 0
}

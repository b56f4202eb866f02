// Package render implements the render driver: the handlers that pull
// columns out of the renderer and the sync engine and forward them to the
// column output.
//
// A single mutex stands in for the interrupt mask of a single-core
// controller. Every handler holds it for its whole run, so handlers never
// nest, and the foreground takes it through Critical for writes that must
// not be torn by a handler.
package render

import (
	"sync"

	"libdb.so/povglow/internal/debounce"
	"libdb.so/povglow/internal/rotsync"
	"libdb.so/povglow/internal/scroll"
)

// Output receives one column bit-pattern per call. Implementations are
// called with the driver lock held and must return quickly without
// blocking.
type Output interface {
	WriteColumn(col uint8)
}

// OutputFunc is a function that implements Output.
type OutputFunc func(col uint8)

// WriteColumn implements Output.
func (f OutputFunc) WriteColumn(col uint8) { f(col) }

// KeySampler returns the raw key state, one bit per key, 1 meaning pressed.
type KeySampler func() uint8

// Driver owns the renderer, the optional sync engine and the key debouncer
// on behalf of the handlers.
type Driver struct {
	mu      sync.Mutex
	out     Output
	scroll  *scroll.Renderer
	sync    *rotsync.Engine
	keys    *debounce.Debouncer
	sample  KeySampler
	updates chan struct{}
}

// Opts configures a Driver.
type Opts struct {
	// Output receives every column. It is required.
	Output Output
	// Sync is the rotational sync engine. It is nil when the display only
	// scrolls text.
	Sync *rotsync.Engine
	// Keys samples the raw key pins on every tick. If nil, no key is ever
	// pressed.
	Keys KeySampler
}

// New creates a driver.
func New(opts Opts) *Driver {
	sample := opts.Keys
	if sample == nil {
		sample = func() uint8 { return 0 }
	}

	return &Driver{
		out:     opts.Output,
		scroll:  &scroll.Renderer{},
		sync:    opts.Sync,
		keys:    debounce.New(),
		sample:  sample,
		updates: make(chan struct{}, 1),
	}
}

// Tick is the fixed-cadence handler. The render step runs before the key
// debounce so glyph timing does not depend on input handling.
func (d *Driver) Tick() {
	d.mu.Lock()

	if res := d.scroll.Step(); res.HasColumn() {
		d.out.WriteColumn(res.Column)
	}

	d.keys.Update(d.sample())

	if d.sync != nil {
		d.sync.OnTick()
	}

	d.mu.Unlock()

	select {
	case d.updates <- struct{}{}:
	default:
	}
}

// RadialTick is the per-column handler. elapsed is the counter delta since
// the previous radial tick. It returns the column interval the radial timer
// should run at from now on.
func (d *Driver) RadialTick(elapsed uint32) uint32 {
	if d.sync == nil {
		return 0
	}

	d.mu.Lock()
	col := d.sync.OnRadialTick(elapsed)
	d.out.WriteColumn(col)
	interval := d.sync.Interval()
	d.mu.Unlock()

	return interval
}

// PulseEdge is the sync sensor handler.
func (d *Driver) PulseEdge(falling bool) {
	if d.sync == nil {
		return
	}

	d.mu.Lock()
	d.sync.OnPulseEdge(falling)
	d.mu.Unlock()
}

// Updates returns a channel that receives a value after ticks. Ticks that
// happen while a value is pending are coalesced.
func (d *Driver) Updates() <-chan struct{} {
	return d.updates
}

// Critical runs f with every handler held off. f is given the handler-owned
// state and must not retain it.
func (d *Driver) Critical(f func(s *State)) {
	d.mu.Lock()
	f(&State{
		Scroll: d.scroll,
		Sync:   d.sync,
		Keys:   d.keys,
		Output: d.out,
	})
	d.mu.Unlock()
}

// State is the handler-owned state exposed inside Critical.
type State struct {
	Scroll *scroll.Renderer
	Sync   *rotsync.Engine // nil without sync
	Keys   *debounce.Debouncer
	Output Output
}

// Rendering returns true while the renderer is active. It does not take the
// driver lock.
func (d *Driver) Rendering() bool {
	return d.scroll.Active()
}

// Locked returns true while the sync engine is locked. It does not take the
// driver lock.
func (d *Driver) Locked() bool {
	return d.sync != nil && d.sync.Locked()
}

// SyncState returns a consistent copy of the sync engine state.
func (d *Driver) SyncState() (rotsync.State, bool) {
	if d.sync == nil {
		return rotsync.State{}, false
	}

	d.mu.Lock()
	s := d.sync.Snapshot()
	d.mu.Unlock()

	return s, true
}

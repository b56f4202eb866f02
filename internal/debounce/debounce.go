// Package debounce implements an 8-key vertical-counter debounce filter. A
// key changes its debounced state after its raw sample has differed from
// the debounced state on 4 consecutive updates.
//
// Update must be called at a fixed cadence; the debounce time is 4 update
// periods.
package debounce

// Debouncer filters up to 8 keys, one per bit. Bit set means pressed.
type Debouncer struct {
	state uint8
	press uint8
	ct0   uint8
	ct1   uint8
}

// New creates a debouncer with all keys released.
func New() *Debouncer {
	return &Debouncer{ct0: 0xff, ct1: 0xff}
}

// Update feeds one raw sample.
func (d *Debouncer) Update(raw uint8) {
	i := d.state ^ raw
	d.ct0 = ^(d.ct0 & i)
	d.ct1 = d.ct0 ^ (d.ct1 & i)
	i &= d.ct0 & d.ct1
	d.state ^= i
	d.press |= d.state & i
}

// State returns the debounced key state.
func (d *Debouncer) State() uint8 {
	return d.state
}

// TakePress consumes the press edges of the keys in mask and returns true
// if any was pending.
func (d *Debouncer) TakePress(mask uint8) bool {
	p := d.press & mask
	d.press &^= mask
	return p != 0
}

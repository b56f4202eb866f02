// Package scroll implements the glyph-scan renderer. A Renderer walks a text
// buffer one glyph column per Step, forwards or backwards, and reports when
// the last column has been emitted.
//
// Step is meant to be called from a periodic handler: it never blocks,
// allocates or loops.
package scroll

import (
	"fmt"
	"sync/atomic"

	"libdb.so/povglow/internal/font"
)

// Direction is the scan direction over the text.
type Direction uint8

const (
	// Forward scans from the first column of the first character.
	Forward Direction = iota
	// Backward scans from the last column of the last character.
	Backward
)

// String returns a string representation of the direction.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "forward":
		*d = Forward
	case "backward":
		*d = Backward
	default:
		return fmt.Errorf("unknown direction %q", text)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Kind tags a Step result.
type Kind uint8

const (
	// Idle means the renderer is inactive and produced no column.
	Idle Kind = iota
	// More means a column was produced and more are pending.
	More
	// Final means a column was produced and it was the last one.
	Final
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case More:
		return "more"
	case Final:
		return "final"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Result is the outcome of a single Step.
type Result struct {
	Kind Kind
	// Column is the bit-pattern to display. It is zero when Kind is Idle.
	Column uint8
}

// HasColumn returns true if the result carries a column to display.
func (r Result) HasColumn() bool {
	return r.Kind != Idle
}

// Renderer is the glyph-scan state machine. The zero value is an inactive
// renderer.
//
// Init and Activate are foreground operations; callers must make sure Step
// is not running concurrently with them. Active may be called at any time.
type Renderer struct {
	active atomic.Bool

	text   []byte
	length int
	font   font.Font

	char   int
	column int
	step   int
}

// Init binds the renderer to text, which ends at its first zero byte or at
// the end of the slice, whichever comes first. The text is not copied. Init
// does not activate the renderer.
func (r *Renderer) Init(text []byte, f font.Font, dir Direction) {
	length := len(text)
	for i, ch := range text {
		if ch == 0 {
			length = i
			break
		}
	}

	r.text = text
	r.length = length
	r.font = f

	if dir == Forward {
		r.char = 0
		r.column = 0
		r.step = 1
	} else {
		r.char = length - 1
		r.column = f.Width - 1
		r.step = -1
	}
}

// Activate starts emitting columns on the next Step.
func (r *Renderer) Activate() {
	r.active.Store(true)
}

// Deactivate stops the renderer. Subsequent Steps are idle until the next
// Activate.
func (r *Renderer) Deactivate() {
	r.active.Store(false)
}

// Active returns true while a render is in progress.
func (r *Renderer) Active() bool {
	return r.active.Load()
}

// Len returns the number of characters bound by the last Init.
func (r *Renderer) Len() int {
	return r.length
}

// Step emits the current column and advances. Once the last column has been
// returned tagged Final, the renderer is inactive.
func (r *Renderer) Step() Result {
	if !r.active.Load() {
		return Result{}
	}

	if r.length == 0 {
		r.active.Store(false)
		return Result{}
	}

	col := r.font.Column(r.text[r.char], r.column)

	next := r.column + r.step
	if next < 0 || next >= r.font.Width {
		if r.step > 0 {
			next = 0
		} else {
			next = r.font.Width - 1
		}

		r.column = next
		r.char += r.step
		if r.char < 0 || r.char >= r.length {
			r.active.Store(false)
			return Result{Kind: Final, Column: col}
		}
		return Result{Kind: More, Column: col}
	}

	r.column = next
	return Result{Kind: More, Column: col}
}

// Drain steps an active renderer until it finishes or dst is full and
// returns the number of columns written. It is a foreground helper for
// laying text out into a buffer; it must not be used from a handler.
func Drain(r *Renderer, dst []uint8) int {
	var n int
	for n < len(dst) {
		res := r.Step()
		if !res.HasColumn() {
			break
		}
		dst[n] = res.Column
		n++
		if res.Kind == Final {
			break
		}
	}
	return n
}

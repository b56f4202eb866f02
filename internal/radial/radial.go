// Package radial builds the patterns shown by the sync engine: one column
// per angular position over a full revolution.
package radial

import (
	"fmt"

	"libdb.so/povglow/internal/font"
	"libdb.so/povglow/internal/scroll"
)

// Kind is the kind of radial pattern.
type Kind string

const (
	// TextKind lays the current message out along the rim.
	TextKind Kind = "text"
	// SpokesKind draws evenly spaced full-height spokes.
	SpokesKind Kind = "spokes"
	// RingKind lights the same rows at every angle.
	RingKind Kind = "ring"
)

// Validate returns an error for unknown kinds.
func (k Kind) Validate() error {
	switch k {
	case TextKind, SpokesKind, RingKind:
		return nil
	default:
		return fmt.Errorf("unknown radial pattern %q", string(k))
	}
}

// Text clears dst and lays msg out into it starting at column offset,
// wrapping around the end of dst. Text longer than one revolution is cut.
// It returns the number of columns drawn.
func Text(dst Pattern, msg []byte, f font.Font, dir scroll.Direction, offset int) int {
	dst.Clear()
	if len(dst) == 0 {
		return 0
	}

	var r scroll.Renderer
	r.Init(msg, f, dir)
	r.Activate()

	offset %= len(dst)
	if offset < 0 {
		offset += len(dst)
	}

	line := NewPattern(len(dst))
	n := scroll.Drain(&r, line)
	return dst.Draw(offset, line[:n])
}

// Spokes clears dst and draws n evenly spaced columns of mask.
func Spokes(dst Pattern, n int, mask uint8) {
	dst.Clear()
	if n <= 0 || len(dst) == 0 {
		return
	}
	for i := 0; i < n; i++ {
		dst.Set(i*len(dst)/n, mask)
	}
}

// Ring fills dst with mask.
func Ring(dst Pattern, mask uint8) {
	dst.SetRange(0, len(dst), mask)
}

// Holder double-buffers a radial pattern. The foreground draws into Back
// and publishes it with Swap while handlers are held off; the handlers only
// ever read the front buffer.
type Holder struct {
	bufs  [2]Pattern
	front int
}

// NewHolder allocates both buffers for a revolution of columns.
func NewHolder(columns int) *Holder {
	return &Holder{
		bufs: [2]Pattern{
			NewPattern(columns),
			NewPattern(columns),
		},
	}
}

// Front returns the published pattern.
func (h *Holder) Front() Pattern {
	return h.bufs[h.front]
}

// Back returns the buffer the foreground may draw into.
func (h *Holder) Back() Pattern {
	return h.bufs[1-h.front]
}

// Swap publishes the back buffer and returns it.
func (h *Holder) Swap() Pattern {
	h.front = 1 - h.front
	return h.Front()
}

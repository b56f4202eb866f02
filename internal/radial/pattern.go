package radial

import (
	"io"
)

// Pattern is a preallocated row of column bit-patterns, one per angular
// position.
type Pattern []uint8

// NewPattern creates a pattern of n columns, all off.
func NewPattern(n int) Pattern {
	return make(Pattern, n)
}

// Set sets the column at the given index.
func (p Pattern) Set(i int, col uint8) {
	p[i] = col
}

// SetRange sets the columns in [start, end) to col.
func (p Pattern) SetRange(start, end int, col uint8) {
	for i := start; i < end; i++ {
		p[i] = col
	}
}

// Clear turns every column off.
func (p Pattern) Clear() {
	clear(p)
}

// Draw draws other into the pattern at the given index, wrapping around its
// end. It returns the number of columns written, which is at most len(p).
func (p Pattern) Draw(start int, other Pattern) int {
	if len(p) == 0 {
		return 0
	}
	n := min(len(other), len(p))
	for i := 0; i < n; i++ {
		p[(start+i)%len(p)] = other[i]
	}
	return n
}

// WriteTo implements io.WriterTo. It writes the pattern as rows of text, top
// LED first, one character per column.
func (p Pattern) WriteTo(w io.Writer) (int64, error) {
	line := make([]byte, len(p)+1)
	line[len(p)] = '\n'

	var written int64
	for row := 0; row < 8; row++ {
		for i, col := range p {
			if col&(1<<uint(row)) != 0 {
				line[i] = '#'
			} else {
				line[i] = ' '
			}
		}
		n, err := w.Write(line)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

package colout

import (
	"io"
)

// TerminalSink prints each column as one line, top LED first, lit LEDs as
// '#'. Scrolled text reads top to bottom, rotated by a quarter turn.
type TerminalSink struct {
	w    io.Writer
	line []byte
}

var _ Sink = (*TerminalSink)(nil)

// NewTerminalSink creates a sink printing columns of height LEDs.
func NewTerminalSink(w io.Writer, height int) *TerminalSink {
	if height < 1 || height > 8 {
		height = 8
	}
	return &TerminalSink{
		w:    w,
		line: make([]byte, height+1),
	}
}

// Emit implements Sink.
func (t *TerminalSink) Emit(col uint8) error {
	n := len(t.line) - 1
	for i := 0; i < n; i++ {
		if col&(1<<uint(i)) != 0 {
			t.line[i] = '#'
		} else {
			t.line[i] = '.'
		}
	}
	t.line[n] = '\n'
	_, err := t.w.Write(t.line)
	return err
}

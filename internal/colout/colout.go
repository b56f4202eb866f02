// Package colout implements the column outputs: GPIO pins driven directly,
// and queued outputs drained by a goroutine onto a serial port or a
// terminal.
package colout

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"libdb.so/povglow/internal/render"
)

// Sink emits columns on behalf of a Queue. It may block.
type Sink interface {
	Emit(col uint8) error
}

// Queue is a render.Output that never blocks. Columns are buffered and
// handed to a Sink by Run; when the buffer is full, columns are dropped and
// counted.
type Queue struct {
	sink    Sink
	columns chan uint8
	dropped atomic.Uint64
}

var _ render.Output = (*Queue)(nil)

// NewQueue creates a queue buffering up to depth columns.
func NewQueue(sink Sink, depth int) *Queue {
	if depth < 1 {
		depth = 1
	}
	return &Queue{
		sink:    sink,
		columns: make(chan uint8, depth),
	}
}

// WriteColumn implements render.Output.
func (q *Queue) WriteColumn(col uint8) {
	select {
	case q.columns <- col:
	default:
		q.dropped.Add(1)
	}
}

// Dropped returns the number of columns dropped so far.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Run drains the queue into the sink until ctx is canceled or the sink
// fails.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case col := <-q.columns:
			if err := q.sink.Emit(col); err != nil {
				return errors.Wrap(err, "failed to emit column")
			}
		}
	}
}

// Flush emits every buffered column. It must not be called while Run is
// running.
func (q *Queue) Flush() error {
	for {
		select {
		case col := <-q.columns:
			if err := q.sink.Emit(col); err != nil {
				return errors.Wrap(err, "failed to emit column")
			}
		default:
			return nil
		}
	}
}

package colout

import (
	"io"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"libdb.so/povglow/colserial"
)

// OpenSerial opens the serial port of a column driver board.
func OpenSerial(device string, baud int) (serial.Port, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}
	return port, nil
}

// SerialSink emits columns as colserial packets.
type SerialSink struct {
	w io.Writer
}

var _ Sink = (*SerialSink)(nil)

// NewSerialSink creates a sink writing to w, usually a serial.Port.
func NewSerialSink(w io.Writer) *SerialSink {
	return &SerialSink{w: w}
}

// Initialize tells the board the column height and clears it.
func (s *SerialSink) Initialize(height int) error {
	if err := colserial.WriteIncomingPacket(s.w, colserial.InitializePacket{
		Height: uint8(height),
	}); err != nil {
		return errors.Wrap(err, "failed to initialize board")
	}
	return s.Clear()
}

// Clear turns the whole column off.
func (s *SerialSink) Clear() error {
	return colserial.WriteIncomingPacket(s.w, colserial.ClearPacket{})
}

// Emit implements Sink.
func (s *SerialSink) Emit(col uint8) error {
	return colserial.WriteIncomingPacket(s.w, colserial.ColumnPacket{Bits: col})
}

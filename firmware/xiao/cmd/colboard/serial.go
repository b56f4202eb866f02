package main

import (
	"io"
	"machine"
	"runtime"
	"time"
)

type serialIO struct {
	machine.Serialer
}

// SerialReadWriter is a machine.Serialer usable as an io.ReadWriter.
type SerialReadWriter interface {
	io.ReadWriter
	ReadByte() (byte, error)
	WriteByte(byte) error
	// Buffered returns the number of bytes currently buffered in the serial
	// device.
	Buffered() int
}

// WrapSerial wraps a machine.Serialer in an io.ReadWriter.
func WrapSerial(serial machine.Serialer) SerialReadWriter {
	return serialIO{Serialer: serial}
}

// Read blocks until at least one byte is buffered.
func (s serialIO) Read(b []byte) (int, error) {
	for len(b) > 0 {
		n := min(s.Buffered(), len(b))
		if n == 0 {
			// Sleep to reduce CPU usage.
			time.Sleep(100 * time.Microsecond)
			continue
		}
		for i := 0; i < n; i++ {
			c, err := s.ReadByte()
			if err != nil {
				return i, err
			}
			b[i] = c
		}
		return n, nil
	}
	return 0, nil
}

func (s serialIO) Write(b []byte) (int, error) {
	for _, c := range b {
		if err := s.WriteByte(c); err != nil {
			return 0, err
		}
	}
	runtime.Gosched()
	return len(b), nil
}

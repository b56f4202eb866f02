package main

import (
	"fmt"
	"machine"

	"libdb.so/povglow/colserial"
)

// Device stores the current state of the device.
type Device struct {
	serial SerialReadWriter
	pins   [8]machine.Pin
	height uint8
}

// NewDevice creates a new device. Every column pin starts low.
func NewDevice(serial machine.Serialer, pins [8]machine.Pin) *Device {
	for _, pin := range pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
	return &Device{
		serial: WrapSerial(serial),
		pins:   pins,
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			continue
		}

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		}
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(colserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(colserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p colserial.OutgoingPacket) {
	colserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (colserial.IncomingPacket, error) {
	return colserial.ReadIncomingPacket(d.serial)
}

func (d *Device) handlePacket(p colserial.IncomingPacket) error {
	switch p := p.(type) {
	case colserial.InitializePacket:
		if p.Height < 1 || int(p.Height) > len(d.pins) {
			return fmt.Errorf("invalid column height: %d", p.Height)
		}
		d.height = p.Height
		d.writeColumn(0)
		setMainLED(0, 0, 255) // blue
		d.log(fmt.Sprintf("initialized %d LEDs", p.Height))

	case colserial.ClearPacket:
		d.writeColumn(0)
		setMainLED(0, 0, 0)

	case colserial.ColumnPacket:
		// Columns arrive at the tick rate; acking them would halve the link.
		d.writeColumn(p.Bits)
		return nil

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	d.sendPacket(colserial.AckPacket{
		IncomingPacketType: p.Type(),
	})
	return nil
}

func (d *Device) writeColumn(bits uint8) {
	for i := 0; i < int(d.height); i++ {
		d.pins[i].Set(bits&(1<<uint(i)) != 0)
	}
}

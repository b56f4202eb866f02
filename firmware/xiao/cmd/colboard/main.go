// Command colboard is the firmware of the LED column driver board. It
// receives column packets over USB serial and drives one pin per LED.
package main

import "machine"

// columnPins are the LED pins, top LED first.
var columnPins = [8]machine.Pin{
	machine.D0, machine.D1, machine.D2, machine.D3,
	machine.D4, machine.D5, machine.D6, machine.D7,
}

func main() {
	d := NewDevice(machine.Serial, columnPins)
	d.Run()
}

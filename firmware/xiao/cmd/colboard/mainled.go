package main

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

var mainLED ws2812.Device
var mainLEDPower = machine.GPIO11
var mainLEDInitialized bool

func initMainLED() {
	if !mainLEDInitialized {
		// https://wiki.seeedstudio.com/XIAO-RP2040-with-Arduino/
		mainLEDPower.Configure(machine.PinConfig{Mode: machine.PinOutput})
		mainLEDPower.Low()

		machine.GPIO12.Configure(machine.PinConfig{Mode: machine.PinOutput})
		mainLED = ws2812.New(machine.GPIO12)

		mainLEDInitialized = true
	}
}

// setMainLED shows the board state on the onboard RGB LED. Black turns it
// off.
func setMainLED(r, g, b uint8) {
	initMainLED()
	if r == 0 && g == 0 && b == 0 {
		mainLEDPower.Low()
		return
	}
	mainLEDPower.High()
	// The onboard LED is GRB.
	mainLED.WriteByte(g)
	mainLED.WriteByte(r)
	mainLED.WriteByte(b)
}

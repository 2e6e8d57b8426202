//go:build rp2040

package main

import (
	"machine"

	"picoclock/core"
	"picoclock/input"
	"picoclock/targets/pio"
)

// Board wiring
var (
	buttonPins = [input.NumButtons]core.GPIOPin{2, 3, 4} // Mode, Up, Down; to ground

	beeperPin core.GPIOPin = 5  // active buzzer via transistor
	tonePin   core.PWMPin  = 6  // passive buzzer, PWM slice 3A
	dhtPin                 = machine.GP22

	matrixPins = pio.Pins{
		Data:   machine.GP10,
		Clock:  machine.GP11,
		Latch:  machine.GP12,
		Row:    [3]machine.Pin{machine.GP13, machine.GP14, machine.GP15},
		Enable: 16, // PWM slice 0A
	}

	i2cSDA = machine.GP20
	i2cSCL = machine.GP21
)

// Light dependent resistor divider on ADC0 (GP26)
const lightChannel core.ADCChannelID = 0

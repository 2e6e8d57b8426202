//go:build rp2040

package main

import (
	"machine"

	"picoclock/core"
)

// RPGPIODriver implements core.GPIODriver. GPIO numbers map directly to
// machine pins.
type RPGPIODriver struct {
	configured [30]bool
}

// NewRPGPIODriver creates the driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{}
}

func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if pin >= 30 {
		return errBadPin
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configured[pin] = true
	return nil
}

func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	if pin >= 30 {
		return errBadPin
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	d.configured[pin] = true
	return nil
}

// SetPin configures unconfigured pins as outputs first
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	if pin >= 30 {
		return errBadPin
	}
	if !d.configured[pin] {
		if err := d.ConfigureOutput(pin); err != nil {
			return err
		}
	}
	machine.Pin(pin).Set(value)
	return nil
}

// ReadPin reads the pin level; unconfigured pins read high, like an
// idle pulled-up button
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	if pin >= 30 || !d.configured[pin] {
		return true
	}
	return machine.Pin(pin).Get()
}

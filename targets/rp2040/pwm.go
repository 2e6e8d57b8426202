//go:build rp2040

package main

import (
	"machine"

	"picoclock/core"
)

// pwmPeripheral abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
	SetPeriod(period uint64) error
}

// RP2040PWMDriver drives square waves and duty cycles on the eight PWM
// slices. Each slice has one period, so the two pins of a slice must not
// carry different frequencies.
type RP2040PWMDriver struct {
	channels [30]uint8
	duty     [30]uint16
	dutySet  [30]bool
	ready    [30]bool
}

// NewRP2040PWMDriver creates the driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{}
}

// slice maps GPIO N to slice (N >> 1) & 7; even pins are channel A
func slice(pin core.PWMPin) pwmPeripheral {
	switch (pin >> 1) & 0x7 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// ConfigureTone sets the pin up silent at 1 kHz
func (d *RP2040PWMDriver) ConfigureTone(pin core.PWMPin) error {
	if pin >= 30 {
		return errBadPin
	}
	pwm := slice(pin)
	if err := pwm.Configure(machine.PWMConfig{Period: 1e6}); err != nil {
		return err
	}
	ch, err := pwm.Channel(machine.Pin(pin))
	if err != nil {
		return err
	}
	d.channels[pin] = ch
	d.ready[pin] = true
	pwm.Set(ch, 0)
	return nil
}

// SetFrequency plays hz at the current duty, or half duty if none was
// set. Zero silences the pin.
func (d *RP2040PWMDriver) SetFrequency(pin core.PWMPin, hz uint32) error {
	if pin >= 30 || !d.ready[pin] {
		return errBadPin
	}
	pwm := slice(pin)
	if hz == 0 {
		pwm.Set(d.channels[pin], 0)
		return nil
	}
	if err := pwm.SetPeriod(1e9 / uint64(hz)); err != nil {
		return err
	}
	duty := uint16(0x8000)
	if d.dutySet[pin] {
		duty = d.duty[pin]
	}
	pwm.Set(d.channels[pin], uint32(duty)*pwm.Top()/0xFFFF)
	return nil
}

// SetDutyCycle sets the on fraction, 0 to 0xFFFF
func (d *RP2040PWMDriver) SetDutyCycle(pin core.PWMPin, value uint16) error {
	if pin >= 30 || !d.ready[pin] {
		return errBadPin
	}
	d.duty[pin] = value
	d.dutySet[pin] = true
	pwm := slice(pin)
	pwm.Set(d.channels[pin], uint32(value)*pwm.Top()/0xFFFF)
	return nil
}

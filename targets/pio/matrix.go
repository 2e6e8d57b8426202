//go:build rp2040

// Package pio drives the LED matrix column shift registers from a PIO state
// machine, so a row update costs the CPU one FIFO write.
package pio

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"picoclock/core"
	"picoclock/display"
)

// Column data is clocked into a chain of four 74HC595s, MSB first, so bit
// 31 lands on the leftmost column. After the 32nd bit the program pulses
// the latch.
//
// Pins: data is the OUT pin, clock the side-set pin, latch the SET pin.
func buildShiftProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 1}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Side(0).Encode(),                   // 0: pull block        side 0
		asm.Out(rp2pio.OutDestPins, 1).Side(0).Encode(),          // 1: out pins, 1       side 0
		asm.Jmp(1, rp2pio.JmpOSRNotEmpty).Side(1).Encode(),       // 2: jmp !osre, 1      side 1
		asm.Set(rp2pio.SetDestPins, 1).Side(0).Encode(),          // 3: set pins, 1       side 0
		asm.Set(rp2pio.SetDestPins, 0).Side(0).Delay(1).Encode(), // 4: set pins, 0 [1] side 0
		// .wrap
	}
}

// The jump above is absolute, so the program must load at 0
const shiftOrigin = 0

// Clock divider: 125 MHz / 16 gives a shift clock near 2.6 MHz, inside the
// 74HC595 rating at 3.3 V
const shiftClkDiv = 16

// OEFrequency is the PWM rate on the output enable line
const OEFrequency = 20000

// Pins of the matrix board
type Pins struct {
	Data, Clock, Latch machine.Pin
	Row                [3]machine.Pin // 74HC138 address, A0 first
	Enable             core.PWMPin    // active low output enable
}

// RowShifter implements display.RowWriter
type RowShifter struct {
	sm   rp2pio.StateMachine
	pins Pins
}

// NewRowShifter claims a state machine on PIO0 and loads the program
func NewRowShifter(pins Pins) (*RowShifter, error) {
	sm, err := rp2pio.PIO0.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	r := &RowShifter{sm: sm, pins: pins}

	program := buildShiftProgram()
	offset, err := rp2pio.PIO0.AddProgram(program, shiftOrigin)
	if err != nil {
		return nil, err
	}

	mode := rp2pio.PIO0.PinMode()
	for _, p := range []machine.Pin{pins.Data, pins.Clock, pins.Latch} {
		p.Configure(machine.PinConfig{Mode: mode})
	}
	for _, p := range pins.Row {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(pins.Data, 1)
	cfg.SetSetPins(pins.Latch, 1)
	cfg.SetSidesetParams(1, false, false)
	cfg.SetSidesetPins(pins.Clock)
	// Shift left (MSB first), explicit pull, 32 bit threshold for !osre
	cfg.SetOutShift(false, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(shiftClkDiv, 0)

	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(pins.Data, 1, true)
	sm.SetPindirsConsecutive(pins.Clock, 1, true)
	sm.SetPindirsConsecutive(pins.Latch, 1, true)
	sm.SetPinsConsecutive(pins.Latch, 1, false)
	sm.SetEnabled(true)

	pwm := core.MustPWM()
	if err := pwm.ConfigureTone(pins.Enable); err != nil {
		return nil, err
	}
	if err := pwm.SetFrequency(pins.Enable, OEFrequency); err != nil {
		return nil, err
	}
	r.SetBrightness(display.MaxBrightness)
	return r, nil
}

// WriteRow selects row and queues its column bits. The new row shows the
// previous columns for the few microseconds the shift takes.
func (r *RowShifter) WriteRow(row uint8, bits uint32) {
	for i, p := range r.pins.Row {
		p.Set(row&(1<<i) != 0)
	}
	for r.sm.IsTxFIFOFull() {
	}
	r.sm.TxPut(bits)
}

// SetBrightness maps 0..MaxBrightness onto the enable duty cycle
func (r *RowShifter) SetBrightness(level uint8) {
	if level > display.MaxBrightness {
		level = display.MaxBrightness
	}
	on := uint32(level) * 0xFFFF / display.MaxBrightness
	// Output enable is active low
	_ = core.MustPWM().SetDutyCycle(r.pins.Enable, uint16(0xFFFF-on))
}

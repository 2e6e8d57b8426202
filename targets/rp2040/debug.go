//go:build rp2040

package main

import (
	"errors"
	"machine"

	"picoclock/core"
)

var (
	errBadPin     = errors.New("pin not available")
	errTooLarge   = errors.New("record larger than flash block")
	errUSBStalled = errors.New("usb write made no progress")
)

// InitDebugUART sends firmware debug output to UART0 on GP0 at 115200
// baud, keeping the USB console for the framed protocol
func InitDebugUART() {
	uart := machine.UART0
	err := uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	if err != nil {
		return
	}
	core.SetDebugWriter(func(msg string) {
		_, _ = uart.Write([]byte(msg))
		_, _ = uart.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
	core.DebugPrintln("=== picoclock debug ===")
}

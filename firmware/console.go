package firmware

import (
	"io"

	"picoclock/core"
	"picoclock/protocol"
)

// ConsoleBufferSize is the receive FIFO size
const ConsoleBufferSize = 256

// Console is the framed command link to a host. Feed it received bytes and
// call Process from the main loop to dispatch commands and flush replies.
type Console struct {
	transport *protocol.Transport
	input     *protocol.FifoBuffer
	output    *protocol.ScratchOutput
	overflows uint32
}

// NewConsole attaches a console to the command registry. Only one console
// can be attached at a time.
func (f *Firmware) NewConsole() *Console {
	c := &Console{
		input:  protocol.NewFifoBuffer(ConsoleBufferSize),
		output: protocol.NewScratchOutput(),
	}
	c.transport = protocol.NewTransport(c.output, f.registry.Dispatch)
	c.transport.SetResetCallback(func() {
		core.DebugPrintln("[CONSOLE] host restarted")
	})
	c.transport.SetErrorCallback(func(err error) {
		core.DebugPrintln("[CONSOLE] " + err.Error())
	})
	f.registry.SetSender(c.transport)
	return c
}

// Feed queues received bytes. Bytes that do not fit are dropped and the
// host retransmits them.
func (c *Console) Feed(data []byte) int {
	n := c.input.Write(data)
	if n < len(data) {
		c.overflows++
	}
	return n
}

// Process handles every complete frame and writes the replies to w
func (c *Console) Process(w io.Writer) error {
	if !c.input.IsEmpty() {
		c.transport.Receive(c.input)
	}

	out := c.output.Result()
	if len(out) == 0 {
		return nil
	}
	_, err := w.Write(out)
	c.output.Reset()
	return err
}

// Overflows counts Feed calls that lost bytes
func (c *Console) Overflows() uint32 {
	return c.overflows
}

package protocol

import "sync/atomic"

// CommandHandler handles one decoded command from a frame
type CommandHandler func(cmdID uint16, data *[]byte) error

// Transport is the clock side of the console link. It validates incoming
// frames, dispatches the commands inside them and acknowledges every frame
// with the next expected sequence number.
type Transport struct {
	parser  frameParser
	nextSeq atomic.Uint32
	output  OutputBuffer
	handler CommandHandler

	resetCallback func()
	flushCallback func()
	errorCallback func(error)
}

// NewTransport creates a transport writing into output
func NewTransport(output OutputBuffer, handler CommandHandler) *Transport {
	t := &Transport{
		parser:  frameParser{synced: true},
		output:  output,
		handler: handler,
	}
	t.nextSeq.Store(SeqDest)
	return t
}

// Receive consumes every complete frame available in input
func (t *Transport) Receive(input InputBuffer) {
	consumed, resynced := t.parser.parse(input.Data(), t.handleFrame)
	if resynced {
		t.sendAck()
	}
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (t *Transport) handleFrame(f Frame) {
	expected := uint8(t.nextSeq.Load())

	// A host that restarts begins again at SeqDest
	if f.Seq == SeqDest && expected != SeqDest {
		expected = SeqDest
		t.nextSeq.Store(SeqDest)
		if t.resetCallback != nil {
			t.resetCallback()
		}
	}

	if f.Seq == expected {
		t.nextSeq.Store(uint32(nextSeq(expected)))
		if err := t.dispatch(f.Payload); err != nil && t.errorCallback != nil {
			t.errorCallback(err)
		}
	}

	// Sent for duplicates too; the sequence tells the host what we expect
	t.sendAck()
}

func (t *Transport) dispatch(payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.parser.synced = false
			err = ErrInvalidVLQ
		}
	}()

	for len(payload) > 0 {
		cmdID, err := DecodeVLQUint(&payload)
		if err != nil {
			t.parser.synced = false
			return err
		}
		if t.handler == nil {
			continue
		}
		if err := t.handler(uint16(cmdID), &payload); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transport) sendAck() {
	var buf [FrameMin]byte
	t.output.Output(appendFrame(buf[:0], uint8(t.nextSeq.Load()), nil))
	if t.flushCallback != nil {
		t.flushCallback()
	}
}

// SendCommand encodes one message into the output buffer
func (t *Transport) SendCommand(cmdID uint16, args func(output OutputBuffer)) {
	start := t.output.CurPosition()
	t.output.Output([]byte{0, uint8(t.nextSeq.Load())})

	EncodeVLQUint(t.output, uint32(cmdID))
	if args != nil {
		args(t.output)
	}

	size := len(t.output.DataSince(start))
	t.output.Update(start, uint8(size+TrailerSize))
	crc := CRC16(t.output.DataSince(start))
	t.output.Output([]byte{uint8(crc >> 8), uint8(crc), SyncByte})
}

// Reset returns the link to its power-up state
func (t *Transport) Reset() {
	t.parser.synced = true
	t.nextSeq.Store(SeqDest)
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

// SetResetCallback is called when the host restarts its sequence
func (t *Transport) SetResetCallback(callback func()) { t.resetCallback = callback }

// SetFlushCallback is called after each ACK so it can leave immediately
func (t *Transport) SetFlushCallback(callback func()) { t.flushCallback = callback }

// SetErrorCallback receives command handler errors
func (t *Transport) SetErrorCallback(callback func(error)) { t.errorCallback = callback }

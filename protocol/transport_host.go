package protocol

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	ErrTimeout = errors.New("timeout")
	ErrStopped = errors.New("transport stopped")
)

// Message is a response frame received by the host
type Message struct {
	Seq     uint8
	CmdID   uint16
	Payload []byte // arguments after the command ID
}

// ResponseHandler is called from the read loop for every response
type ResponseHandler func(msg *Message)

// HostTransport is the host side of the console link: it sends one command
// at a time, waits for the ACK and queues responses for the caller.
type HostTransport struct {
	port io.ReadWriteCloser

	mu     sync.Mutex // serialises SendCommand
	seq    uint8
	parser frameParser
	input  *FifoBuffer

	acks      chan uint8
	responses chan *Message
	handler   ResponseHandler

	stop chan struct{}
	done chan struct{}
}

// NewHostTransport starts reading from port
func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:      port,
		seq:       SeqDest,
		parser:    frameParser{synced: true},
		input:     NewFifoBuffer(1024),
		acks:      make(chan uint8, 4),
		responses: make(chan *Message, 32),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// SetResponseHandler installs a callback for asynchronous responses.
// Set it before the first command.
func (t *HostTransport) SetResponseHandler(h ResponseHandler) {
	t.handler = h
}

// SendCommand sends a command and waits for its ACK
func (t *HostTransport) SendCommand(cmdID uint16, args func(output OutputBuffer)) error {
	return t.SendCommandWithTimeout(cmdID, args, 2*time.Second)
}

// SendCommandWithTimeout sends a command and waits up to timeout for its ACK
func (t *HostTransport) SendCommandWithTimeout(cmdID uint16, args func(output OutputBuffer), timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	scratch := NewScratchOutput()
	EncodeVLQUint(scratch, uint32(cmdID))
	if args != nil {
		args(scratch)
	}
	payload := scratch.Result()
	if len(payload)+FrameMin > FrameMax {
		return fmt.Errorf("command %d: payload of %d bytes exceeds frame size", cmdID, len(payload))
	}

	frame := appendFrame(make([]byte, 0, FrameMax), t.seq, payload)
	if _, err := t.port.Write(frame); err != nil {
		return fmt.Errorf("write command %d: %w", cmdID, err)
	}

	want := nextSeq(t.seq)
	deadline := time.After(timeout)
	for {
		select {
		case ack := <-t.acks:
			if ack != want {
				// Stale ACK from an earlier retransmission
				continue
			}
			t.seq = want
			return nil
		case <-deadline:
			return fmt.Errorf("command %d: ack: %w", cmdID, ErrTimeout)
		case <-t.stop:
			return ErrStopped
		}
	}
}

// ReceiveResponse waits for the next response
func (t *HostTransport) ReceiveResponse(timeout time.Duration) (*Message, error) {
	select {
	case msg := <-t.responses:
		return msg, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("response: %w", ErrTimeout)
	case <-t.stop:
		return nil, ErrStopped
	}
}

func (t *HostTransport) readLoop() {
	defer close(t.done)

	buf := make([]byte, 256)
	for {
		select {
		case <-t.stop:
			return
		default:
		}

		n, err := t.port.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if n == 0 {
			continue
		}

		t.input.Write(buf[:n])
		consumed, _ := t.parser.parse(t.input.Data(), t.route)
		t.input.Pop(consumed)
	}
}

// route separates empty ACK frames from responses
func (t *HostTransport) route(f Frame) {
	if len(f.Payload) == 0 {
		select {
		case t.acks <- f.Seq:
		default:
		}
		return
	}

	payload := append([]byte(nil), f.Payload...)
	id, err := DecodeVLQUint(&payload)
	if err != nil {
		return
	}
	msg := &Message{Seq: f.Seq, CmdID: uint16(id), Payload: payload}

	if t.handler != nil {
		t.handler(msg)
	}
	select {
	case t.responses <- msg:
	default:
		// Drop the oldest so a slow reader sees recent state
		select {
		case <-t.responses:
		default:
		}
		t.responses <- msg
	}
}

// Close stops the read loop and closes the port
func (t *HostTransport) Close() error {
	close(t.stop)
	err := t.port.Close()
	<-t.done
	return err
}

// Sequence returns the sequence the next command will carry
func (t *HostTransport) Sequence() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}

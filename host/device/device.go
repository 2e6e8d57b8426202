// Package device talks to a clock over its console link: it downloads the
// command dictionary and wraps each console command in a typed call.
package device

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"picoclock/host/serial"
	"picoclock/protocol"
)

// Fixed IDs every firmware registers first
const (
	identifyResponseID = 0
	identifyID         = 1
)

const (
	// ChunkSize is the dictionary bytes requested per identify
	ChunkSize = 40

	DefaultTimeout = time.Second
)

var (
	ErrNoDictionary   = errors.New("dictionary not loaded")
	ErrUnknownCommand = errors.New("command not in dictionary")
)

// Dictionary is the parsed identify document
type Dictionary struct {
	Version      string                    `json:"version"`
	Config       map[string]string         `json:"config"`
	Commands     map[string]int            `json:"commands"`
	Responses    map[string]int            `json:"responses"`
	Enumerations map[string]map[string]int `json:"enumerations,omitempty"`
}

// Device is one connected clock
type Device struct {
	transport *protocol.HostTransport

	dictionary     *Dictionary
	dictionaryData []byte
	commands       map[string]uint16
	responses      map[string]uint16

	Timeout time.Duration
}

// Connect opens the serial port and downloads the dictionary
func Connect(cfg *serial.Config) (*Device, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	d := New(port)
	if err := d.RetrieveDictionary(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an open link. Call RetrieveDictionary before any command.
func New(port io.ReadWriteCloser) *Device {
	return &Device{
		transport: protocol.NewHostTransport(port),
		Timeout:   DefaultTimeout,
	}
}

// Close closes the link
func (d *Device) Close() error {
	return d.transport.Close()
}

// RetrieveDictionary downloads the dictionary in identify chunks
func (d *Device) RetrieveDictionary() error {
	var buf bytes.Buffer
	offset := uint32(0)
	for i := 0; i < 1000; i++ {
		chunk, err := d.identify(offset)
		if err != nil {
			return fmt.Errorf("dictionary chunk at offset %d: %w", offset, err)
		}
		buf.Write(chunk)
		offset += uint32(len(chunk))
		if len(chunk) < ChunkSize {
			break
		}
	}

	zr, err := zlib.NewReader(&buf)
	if err != nil {
		return fmt.Errorf("dictionary stream: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("inflate dictionary: %w", err)
	}
	d.dictionaryData = data
	return d.parseDictionary()
}

func (d *Device) identify(offset uint32) ([]byte, error) {
	err := d.transport.SendCommandWithTimeout(identifyID, func(out protocol.OutputBuffer) {
		protocol.EncodeArgs(out, offset, ChunkSize)
	}, d.Timeout)
	if err != nil {
		return nil, fmt.Errorf("send identify: %w", err)
	}

	payload, err := d.await(identifyResponseID)
	if err != nil {
		return nil, err
	}

	got, err := protocol.DecodeVLQUint(&payload)
	if err != nil {
		return nil, fmt.Errorf("decode identify offset: %w", err)
	}
	if got != offset {
		return nil, fmt.Errorf("offset mismatch: expected %d, got %d", offset, got)
	}
	data, err := protocol.DecodeVLQBytes(&payload)
	if err != nil {
		return nil, fmt.Errorf("decode identify data: %w", err)
	}
	return data, nil
}

func (d *Device) parseDictionary() error {
	dict := &Dictionary{}
	if err := json.Unmarshal(d.dictionaryData, dict); err != nil {
		return fmt.Errorf("parse dictionary: %w", err)
	}
	d.dictionary = dict
	d.commands = byName(dict.Commands)
	d.responses = byName(dict.Responses)
	return nil
}

// byName indexes "name arg=%fmt ..." entries by name
func byName(m map[string]int) map[string]uint16 {
	out := make(map[string]uint16, len(m))
	for format, id := range m {
		name, _, _ := strings.Cut(format, " ")
		out[name] = uint16(id)
	}
	return out
}

// Dictionary returns the parsed dictionary
func (d *Device) Dictionary() *Dictionary {
	return d.dictionary
}

// DictionaryRaw returns the inflated dictionary JSON
func (d *Device) DictionaryRaw() []byte {
	return d.dictionaryData
}

// Send sends a command by name and waits for its ACK
func (d *Device) Send(name string, args func(protocol.OutputBuffer)) error {
	if d.dictionary == nil {
		return ErrNoDictionary
	}
	id, ok := d.commands[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}
	if err := d.transport.SendCommandWithTimeout(id, args, d.Timeout); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Call sends a command and returns the arguments of the named response
func (d *Device) Call(name string, args func(protocol.OutputBuffer), response string) ([]byte, error) {
	if err := d.Send(name, args); err != nil {
		return nil, err
	}
	id, ok := d.responses[response]
	if !ok {
		return nil, fmt.Errorf("%s: %w", response, ErrUnknownCommand)
	}
	payload, err := d.await(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return payload, nil
}

// await skips responses with other IDs until one with id arrives
func (d *Device) await(id uint16) ([]byte, error) {
	deadline := time.Now().Add(d.Timeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return nil, fmt.Errorf("response %d: %w", id, protocol.ErrTimeout)
		}
		msg, err := d.transport.ReceiveResponse(left)
		if err != nil {
			return nil, err
		}
		if msg.CmdID == id {
			return msg.Payload, nil
		}
	}
}

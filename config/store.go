package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"picoclock/core"
	"picoclock/protocol"
)

// SourceConfig tags configuration events in the debug event ring
const SourceConfig = 5

var (
	ErrEmpty    = errors.New("no stored configuration")
	ErrChecksum = errors.New("configuration checksum mismatch")
)

// Store is the persistence collaborator. On the RP2040 it is the last
// flash sector; erased flash reads as 0xFF.
type Store interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Erase() error
}

const (
	headerSize  = 2
	trailerSize = 2
)

// Encode frames the record as [len hi][len lo][json][crc hi][crc lo]
func Encode(r Record) ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	if len(body) > 0xFFFE {
		return nil, fmt.Errorf("record too large: %d bytes", len(body))
	}

	out := make([]byte, 0, headerSize+len(body)+trailerSize)
	out = append(out, byte(len(body)>>8), byte(len(body)))
	out = append(out, body...)
	crc := protocol.CRC16(body)
	return append(out, byte(crc>>8), byte(crc)), nil
}

// Decode validates the framing and checksum and applies defaults to any
// field out of range
func Decode(data []byte) (Record, error) {
	if len(data) < headerSize+trailerSize {
		return Record{}, ErrEmpty
	}
	n := int(data[0])<<8 | int(data[1])
	if n == 0xFFFF || n == 0 {
		return Record{}, ErrEmpty
	}
	if headerSize+n+trailerSize > len(data) {
		return Record{}, ErrChecksum
	}

	body := data[headerSize : headerSize+n]
	stored := uint16(data[headerSize+n])<<8 | uint16(data[headerSize+n+1])
	if protocol.CRC16(body) != stored {
		return Record{}, ErrChecksum
	}

	var r Record
	if err := json.Unmarshal(body, &r); err != nil {
		return Record{}, fmt.Errorf("decode configuration: %w", err)
	}
	r.applyDefaults()
	return r, nil
}

// Load reads the stored record. Anything unusable is replaced by the
// defaults, which are written back straight away; the reason is returned
// alongside the defaults.
func Load(s Store) (Record, error) {
	data, err := s.Read()
	if err == nil {
		var r Record
		if r, err = Decode(data); err == nil {
			return r, nil
		}
	}

	core.RecordEvent(core.EvtConfigReset, SourceConfig, core.GetTime(), 0, 0)
	core.DebugPrintln("[CONFIG] using defaults: " + err.Error())

	r := Defaults()
	if werr := Save(s, r); werr != nil {
		return r, fmt.Errorf("%w (write-back failed: %v)", err, werr)
	}
	return r, err
}

// Save erases the store and writes r. Only the main loop calls this.
func Save(s Store, r Record) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	if err := s.Erase(); err != nil {
		core.RecordEvent(core.EvtPersistFailure, SourceConfig, core.GetTime(), 1, 0)
		return fmt.Errorf("erase: %w", err)
	}
	if err := s.Write(data); err != nil {
		core.RecordEvent(core.EvtPersistFailure, SourceConfig, core.GetTime(), 2, uint32(len(data)))
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// MemoryStore keeps the record in RAM. Used by tests and as the fallback
// when no flash is available.
type MemoryStore struct {
	data   []byte
	Writes int
}

func (m *MemoryStore) Read() ([]byte, error) {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *MemoryStore) Write(data []byte) error {
	m.data = append(m.data[:0], data...)
	m.Writes++
	return nil
}

func (m *MemoryStore) Erase() error {
	m.data = m.data[:0]
	return nil
}

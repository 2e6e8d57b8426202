//go:build rp2040

package main

import (
	"machine"
)

// FlashStore keeps the configuration record in the last erase block of
// the flash data area. Reads return the whole block; the record framing
// carries its own length.
type FlashStore struct {
	offset int64
	size   int64
}

// NewFlashStore uses the last erase block of machine.Flash
func NewFlashStore() *FlashStore {
	size := machine.Flash.EraseBlockSize()
	return &FlashStore{offset: machine.Flash.Size() - size, size: size}
}

func (s *FlashStore) Read() ([]byte, error) {
	buf := make([]byte, s.size)
	if _, err := machine.Flash.ReadAt(buf, s.offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write pads data to whole write blocks with the erased value
func (s *FlashStore) Write(data []byte) error {
	if int64(len(data)) > s.size {
		return errTooLarge
	}
	block := machine.Flash.WriteBlockSize()
	n := (int64(len(data)) + block - 1) / block * block
	buf := make([]byte, n)
	copy(buf, data)
	for i := len(data); i < len(buf); i++ {
		buf[i] = 0xFF
	}
	_, err := machine.Flash.WriteAt(buf, s.offset)
	return err
}

func (s *FlashStore) Erase() error {
	return machine.Flash.EraseBlocks(s.offset/s.size, 1)
}

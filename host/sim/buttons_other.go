//go:build !linux

package sim

import (
	"errors"

	"picoclock/input"
)

// LineButtons is not available off Linux
type LineButtons struct{}

// NewLineButtons returns an error on non-Linux platforms
func NewLineButtons(chip string, pins []int) (*LineButtons, error) {
	return nil, errors.New("gpio buttons: not supported on this platform (requires Linux)")
}

func (b *LineButtons) Pressed() ([input.NumButtons]bool, error) {
	return [input.NumButtons]bool{}, errors.New("gpio buttons: not supported")
}

func (b *LineButtons) Close() error {
	return nil
}

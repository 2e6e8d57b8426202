//go:build linux

package sim

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"picoclock/input"
)

// LineButtons reads real push buttons wired to a Linux GPIO chip. Buttons
// pull the line to ground when pressed.
type LineButtons struct {
	chip  *gpiocdev.Chip
	lines [input.NumButtons]*gpiocdev.Line
}

// NewLineButtons requests pins, in Mode/Up/Down order, on chip
func NewLineButtons(chip string, pins []int) (*LineButtons, error) {
	if len(pins) != input.NumButtons {
		return nil, fmt.Errorf("need %d button pins, got %d", input.NumButtons, len(pins))
	}
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &LineButtons{chip: c}
	for i, pin := range pins {
		line, err := c.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request button pin %d: %w", pin, err)
		}
		b.lines[i] = line
	}
	return b, nil
}

// Pressed returns the logical state of each button
func (b *LineButtons) Pressed() ([input.NumButtons]bool, error) {
	var out [input.NumButtons]bool
	for i, line := range b.lines {
		v, err := line.Value()
		if err != nil {
			return out, fmt.Errorf("read button %d: %w", i, err)
		}
		out[i] = v == 0
	}
	return out, nil
}

// Close releases the lines and the chip
func (b *LineButtons) Close() error {
	var errs []error
	for _, line := range b.lines {
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

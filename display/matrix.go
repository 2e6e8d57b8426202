// Package display holds the LED matrix frame buffers, the row scanner fed
// by the one-millisecond callback, and the text renderer used by the main
// loop.
package display

import (
	"image/color"
	"sync/atomic"
)

// Matrix geometry
const (
	Width  = 32
	Height = 8
)

// Matrix is a double-buffered 32x8 monochrome frame. The main loop draws
// into the back buffer and Display publishes it; the scanner only ever
// reads the front buffer, one row word at a time.
type Matrix struct {
	frames [2][Height]uint32
	front  atomic.Uint32
}

// NewMatrix creates a blank matrix
func NewMatrix() *Matrix {
	return &Matrix{}
}

func (m *Matrix) back() *[Height]uint32 {
	return &m.frames[1-m.front.Load()]
}

// Size implements drivers.Displayer
func (m *Matrix) Size() (x, y int16) {
	return Width, Height
}

// SetPixel implements drivers.Displayer. Any non-black color lights the
// LED; off-screen pixels are ignored.
func (m *Matrix) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	b := m.back()
	bit := uint32(1) << (Width - 1 - x)
	if c.R|c.G|c.B != 0 {
		b[y] |= bit
	} else {
		b[y] &^= bit
	}
}

// Display implements drivers.Displayer by swapping buffers. The new back
// buffer starts as a copy of what is now shown.
func (m *Matrix) Display() error {
	next := 1 - m.front.Load()
	m.front.Store(next)
	m.frames[1-next] = m.frames[next]
	return nil
}

// Clear blanks the back buffer
func (m *Matrix) Clear() {
	*m.back() = [Height]uint32{}
}

// Row returns the published bits of row y, leftmost pixel in bit 31
func (m *Matrix) Row(y uint8) uint32 {
	return m.frames[m.front.Load()][y%Height]
}

// Pixel reports whether the published pixel at x, y is lit
func (m *Matrix) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return m.Row(uint8(y))&(1<<(Width-1-x)) != 0
}

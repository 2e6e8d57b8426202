package display

import (
	"image/color"

	"tinygo.org/x/tinyfont"
)

// Baseline is the font baseline row for an 8 pixel tall matrix
const Baseline = 6

var lit = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// Renderer is what the main loop uses to put text on the display
type Renderer interface {
	RenderText(column int16, text string)
	Scroll(text string)
}

// TextRenderer draws with a tinyfont font into a Matrix
type TextRenderer struct {
	matrix *Matrix
	font   tinyfont.Fonter

	scrollText  string
	scrollX     int16
	scrollWidth int16
	scrolling   bool
}

// NewTextRenderer uses the TomThumb font, which fits eight columns of
// digits on a 32 pixel row
func NewTextRenderer(m *Matrix) *TextRenderer {
	return &TextRenderer{matrix: m, font: &tinyfont.TomThumb}
}

// TextWidth returns the width of text in pixels
func (r *TextRenderer) TextWidth(text string) int16 {
	_, outbox := tinyfont.LineWidth(r.font, text)
	return int16(outbox)
}

// RenderText draws text starting at column and publishes the frame. A
// running scroll is cancelled.
func (r *TextRenderer) RenderText(column int16, text string) {
	r.scrolling = false
	r.draw(column, text)
}

// Centered draws text in the middle of the display
func (r *TextRenderer) Centered(text string) {
	column := (Width - r.TextWidth(text)) / 2
	if column < 0 {
		column = 0
	}
	r.RenderText(column, text)
}

func (r *TextRenderer) draw(column int16, text string) {
	r.matrix.Clear()
	tinyfont.WriteLine(r.matrix, r.font, column, Baseline, text, lit)
	r.matrix.Display()
}

// Scroll starts moving text in from the right edge
func (r *TextRenderer) Scroll(text string) {
	r.scrollText = text
	r.scrollX = Width
	r.scrollWidth = r.TextWidth(text)
	r.scrolling = true
}

// Scrolling reports whether a scroll is in progress
func (r *TextRenderer) Scrolling() bool {
	return r.scrolling
}

// StepScroll moves the scroll one column left. It returns false once the
// text has left the display.
func (r *TextRenderer) StepScroll() bool {
	if !r.scrolling {
		return false
	}
	r.draw(r.scrollX, r.scrollText)
	r.scrollX--
	if r.scrollX < -r.scrollWidth {
		r.scrolling = false
	}
	return r.scrolling
}

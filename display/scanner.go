package display

import "sync/atomic"

// RowWriter is the LED driver: it latches one row's column bits and
// enables that row. Called from the one-millisecond callback.
type RowWriter interface {
	WriteRow(row uint8, bits uint32)
	SetBrightness(level uint8)
}

// MaxBrightness is the top of the brightness scale
const MaxBrightness = 15

// Scanner multiplexes the matrix one row per call
type Scanner struct {
	matrix *Matrix
	out    RowWriter
	row    uint8

	brightness atomic.Uint32
	applied    uint8
	blank      atomic.Bool
}

// NewScanner creates a scanner at full brightness
func NewScanner(m *Matrix, out RowWriter) *Scanner {
	s := &Scanner{matrix: m, out: out, applied: 0xFF}
	s.brightness.Store(MaxBrightness)
	return s
}

// SetBrightness takes effect at the next row. Safe from any context.
func (s *Scanner) SetBrightness(level uint8) {
	if level > MaxBrightness {
		level = MaxBrightness
	}
	s.brightness.Store(uint32(level))
}

// Brightness returns the requested level
func (s *Scanner) Brightness() uint8 {
	return uint8(s.brightness.Load())
}

// SetBlank turns the whole display off without touching the frame
func (s *Scanner) SetBlank(blank bool) {
	s.blank.Store(blank)
}

// Step drives the next row
func (s *Scanner) Step() {
	if level := uint8(s.brightness.Load()); level != s.applied {
		s.out.SetBrightness(level)
		s.applied = level
	}

	bits := s.matrix.Row(s.row)
	if s.blank.Load() {
		bits = 0
	}
	s.out.WriteRow(s.row, bits)

	s.row++
	if s.row == Height {
		s.row = 0
	}
}

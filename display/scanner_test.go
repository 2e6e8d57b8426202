package display

import "testing"

type recordRows struct {
	rows       []uint8
	bits       []uint32
	brightness []uint8
}

func (r *recordRows) WriteRow(row uint8, bits uint32) {
	r.rows = append(r.rows, row)
	r.bits = append(r.bits, bits)
}

func (r *recordRows) SetBrightness(level uint8) {
	r.brightness = append(r.brightness, level)
}

func TestScannerCyclesRows(t *testing.T) {
	m := NewMatrix()
	m.SetPixel(0, 1, on)
	m.Display()

	out := &recordRows{}
	s := NewScanner(m, out)
	for i := 0; i < Height+2; i++ {
		s.Step()
	}

	for i, row := range out.rows {
		if row != uint8(i%Height) {
			t.Fatalf("Step %d: expected row %d, got %d", i, i%Height, row)
		}
	}
	if out.bits[1] != 1<<31 {
		t.Errorf("Expected row 1 lit, got %#x", out.bits[1])
	}
}

func TestScannerBrightnessAppliedOnChange(t *testing.T) {
	out := &recordRows{}
	s := NewScanner(NewMatrix(), out)

	s.Step()
	s.Step()
	s.SetBrightness(40)
	s.Step()
	s.Step()

	if len(out.brightness) != 1 || out.brightness[0] != MaxBrightness {
		t.Errorf("Expected brightness written once, got %v", out.brightness)
	}

	s.SetBrightness(3)
	s.Step()
	if got := out.brightness[len(out.brightness)-1]; got != 3 {
		t.Errorf("Expected level 3, got %d", got)
	}
}

func TestScannerBlank(t *testing.T) {
	m := NewMatrix()
	m.SetPixel(0, 0, on)
	m.Display()

	out := &recordRows{}
	s := NewScanner(m, out)
	s.SetBlank(true)
	s.Step()
	if out.bits[0] != 0 {
		t.Errorf("Expected blank row, got %#x", out.bits[0])
	}
	if !m.Pixel(0, 0) {
		t.Error("Expected blanking to keep the frame")
	}
}

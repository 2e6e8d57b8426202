package display

import "testing"

func lit(m *Matrix) int {
	n := 0
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if m.Pixel(x, y) {
				n++
			}
		}
	}
	return n
}

func TestCenteredText(t *testing.T) {
	m := NewMatrix()
	r := NewTextRenderer(m)
	r.Centered("12:34")

	if lit(m) == 0 {
		t.Fatal("Expected text drawn")
	}
	if w := r.TextWidth("12:34"); w <= 0 || w > Width {
		t.Errorf("Expected width within the display, got %d", w)
	}
	if r.Scrolling() {
		t.Error("Expected no scroll")
	}
}

func TestRenderReplacesFrame(t *testing.T) {
	m := NewMatrix()
	r := NewTextRenderer(m)
	r.Centered("88:88")
	full := lit(m)
	r.Centered("1")
	if got := lit(m); got >= full {
		t.Errorf("Expected fewer pixels after redraw, %d >= %d", got, full)
	}
}

func TestScrollRunsOffDisplay(t *testing.T) {
	m := NewMatrix()
	r := NewTextRenderer(m)
	text := "Fri 16 Oct 2026"
	r.Scroll(text)
	if !r.Scrolling() {
		t.Fatal("Expected scroll to start")
	}

	steps := 0
	seen := false
	for r.StepScroll() {
		steps++
		if lit(m) > 0 {
			seen = true
		}
		if steps > 1000 {
			t.Fatal("Scroll never finished")
		}
	}
	if !seen {
		t.Error("Expected text visible during the scroll")
	}
	if want := int(Width + r.TextWidth(text)); steps != want {
		t.Errorf("Expected %d steps, got %d", want, steps)
	}

	r.Scroll(text)
	r.Centered("12:00")
	if r.Scrolling() {
		t.Error("Expected RenderText to cancel the scroll")
	}
}

package clock

import "testing"

func TestWindowActive(t *testing.T) {
	testCases := []struct {
		start, end, hour uint8
		want             bool
	}{
		{9, 21, 15, true},
		{21, 9, 15, false},
		{9, 21, 2, false},
		{21, 9, 2, true},
		{9, 21, 9, true},
		{9, 21, 21, true},
		{21, 9, 21, true},
		{21, 9, 9, true},
		{21, 9, 10, false},
	}

	for _, tc := range testCases {
		if got := WindowActive(tc.start, tc.end, tc.hour); got != tc.want {
			t.Errorf("WindowActive(%d, %d, %d): Expected %v, got %v", tc.start, tc.end, tc.hour, tc.want, got)
		}
	}
}

func TestChimeOncePerBoundary(t *testing.T) {
	e := newTestEvaluator(Settings{ChimeMode: ChimeHalfHourly, ChimeStart: 9, ChimeEnd: 21})

	e.SetTime(at(2026, 10, 16, 14, 59, 59))
	if r := e.Tick(); r.Chime != HourChime {
		t.Errorf("Expected hour chime at 15:00, got %v", r.Chime)
	}

	// Setting the clock back across the boundary must not chime again
	e.SetTime(at(2026, 10, 16, 14, 59, 59))
	if r := e.Tick(); r.Chime != NoChime {
		t.Errorf("Expected no repeat chime, got %v", r.Chime)
	}

	e.SetTime(at(2026, 10, 16, 15, 29, 59))
	if r := e.Tick(); r.Chime != HalfHourChime {
		t.Errorf("Expected half hour chime at 15:30, got %v", r.Chime)
	}
}

func TestChimeLatchClearsAfterTwoMinutes(t *testing.T) {
	e := newTestEvaluator(Settings{ChimeMode: ChimeHourly, ChimeStart: 0, ChimeEnd: 23})

	e.SetTime(at(2026, 10, 16, 14, 59, 59))
	e.Tick()
	e.SetTime(at(2026, 10, 16, 15, 2, 0))
	e.Tick()
	e.SetTime(at(2026, 10, 16, 15, 59, 59))
	if r := e.Tick(); r.Chime != HourChime {
		t.Errorf("Expected 16:00 chime after latch reset, got %v", r.Chime)
	}
}

func TestChimeOutsideWindow(t *testing.T) {
	e := newTestEvaluator(Settings{ChimeMode: ChimeHourly, ChimeStart: 9, ChimeEnd: 21})

	e.SetTime(at(2026, 10, 16, 1, 59, 59))
	if r := e.Tick(); r.Chime != NoChime {
		t.Errorf("Expected no chime at 02:00 in a daytime window, got %v", r.Chime)
	}
}

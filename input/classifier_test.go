package input

import "testing"

// press holds the given buttons for ms milliseconds then releases them all,
// returning every event produced.
func press(c *Classifier, ms int, ringing bool, buttons ...Button) []Event {
	var levels [NumButtons]bool
	for _, b := range buttons {
		levels[b] = true
	}

	var events []Event
	for i := 0; i < ms; i++ {
		events = append(events, c.Tick(levels, ringing)...)
	}
	events = append(events, c.Tick([NumButtons]bool{}, ringing)...)
	return events
}

func TestClassifyDuration(t *testing.T) {
	testCases := []struct {
		name string
		ms   int
		want Kind
	}{
		{"bounce", 30, 0},
		{"short", 120, Short},
		{"short at threshold", 300, Short},
		{"long", 301, Long},
		{"very long", 20000, Long},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClassifier()
			events := press(c, tc.ms, false, Up)

			if tc.want == 0 {
				if len(events) != 0 {
					t.Errorf("Expected no events, got %+v", events)
				}
				return
			}
			if len(events) != 1 {
				t.Fatalf("Expected 1 event, got %d", len(events))
			}
			if events[0].Kind != tc.want || events[0].Button != Up {
				t.Errorf("Expected %v on up, got %v on %v", tc.want, events[0].Kind, events[0].Button)
			}
		})
	}
}

func TestHoldSaturates(t *testing.T) {
	c := NewClassifier()
	events := press(c, 15000, false, Mode)
	if len(events) != 1 || events[0].Duration != MaxHoldMs {
		t.Errorf("Expected duration capped at %d, got %+v", MaxHoldMs, events)
	}
}

func TestChord(t *testing.T) {
	c := NewClassifier()

	var levels [NumButtons]bool
	levels[Up] = true
	var events []Event
	for i := 0; i < 100; i++ {
		events = append(events, c.Tick(levels, false)...)
	}
	levels[Down] = true
	for i := 0; i < 100; i++ {
		events = append(events, c.Tick(levels, false)...)
	}

	// Releasing one button must not produce an individual press
	levels[Up] = false
	events = append(events, c.Tick(levels, false)...)
	if len(events) != 0 {
		t.Fatalf("Expected nothing until all buttons are up, got %+v", events)
	}

	levels[Down] = false
	events = c.Tick(levels, false)
	if len(events) != 1 || events[0].Kind != Chord {
		t.Fatalf("Expected one chord event, got %+v", events)
	}
	if want := uint8(1<<Up | 1<<Down); events[0].Mask != want {
		t.Errorf("Expected mask %b, got %b", want, events[0].Mask)
	}

	if events := press(c, 100, false, Mode); len(events) != 1 || events[0].Kind != Short {
		t.Errorf("Expected normal classification after chord, got %+v", events)
	}
}

func TestAcknowledgeWhileRinging(t *testing.T) {
	c := NewClassifier()

	events := press(c, 500, true, Down)
	if len(events) != 1 || events[0].Kind != Acknowledge {
		t.Errorf("Expected acknowledge, got %+v", events)
	}

	if events := press(c, 20, true, Down); len(events) != 0 {
		t.Errorf("Expected bounce to be ignored while ringing, got %+v", events)
	}
}

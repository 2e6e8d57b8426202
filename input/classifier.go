// Package input turns the raw level of the three front panel buttons,
// sampled once per millisecond, into press events.
package input

// Button identifies a front panel button
type Button uint8

const (
	Mode Button = iota
	Up
	Down

	NumButtons = 3
)

func (b Button) String() string {
	switch b {
	case Mode:
		return "mode"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "?"
	}
}

// Kind is the classification of a completed press
type Kind uint8

const (
	Short Kind = iota + 1
	Long
	Chord
	Acknowledge
)

func (k Kind) String() string {
	switch k {
	case Short:
		return "short"
	case Long:
		return "long"
	case Chord:
		return "chord"
	case Acknowledge:
		return "ack"
	default:
		return "none"
	}
}

// Press timing in milliseconds
const (
	DebounceMs = 50
	LongMs     = 300
	MaxHoldMs  = 10000
)

// Event is one classified press. Mask holds every button involved in a
// chord.
type Event struct {
	Button   Button
	Kind     Kind
	Duration uint16
	Mask     uint8
}

// Classifier is owned by the one-millisecond callback. It holds no locks
// and never allocates after construction.
type Classifier struct {
	held  [NumButtons]uint16
	chord bool
	mask  uint8
	out   []Event
}

// NewClassifier creates a classifier with all buttons released
func NewClassifier() *Classifier {
	return &Classifier{out: make([]Event, 0, NumButtons)}
}

// Held returns how long b has been down, in milliseconds
func (c *Classifier) Held(b Button) uint16 {
	return c.held[b]
}

// Tick advances one millisecond. pressed is the debounced-by-time level of
// each button (true while held). When ringing is set every release past the
// debounce threshold is reported as Acknowledge. The returned slice is
// reused by the next call.
func (c *Classifier) Tick(pressed [NumButtons]bool, ringing bool) []Event {
	c.out = c.out[:0]

	down := 0
	for i := range pressed {
		if !pressed[i] {
			continue
		}
		if c.held[i] < MaxHoldMs {
			c.held[i]++
		}
		if c.held[i] >= DebounceMs {
			down++
		}
	}

	if down >= 2 && !c.chord {
		c.chord = true
		c.mask = 0
	}
	if c.chord {
		for i := range pressed {
			if pressed[i] && c.held[i] >= DebounceMs {
				c.mask |= 1 << i
			}
		}
	}

	anyDown := false
	for i := range pressed {
		if pressed[i] {
			anyDown = true
			continue
		}
		d := c.held[i]
		c.held[i] = 0
		if d < DebounceMs || c.chord {
			continue
		}

		ev := Event{Button: Button(i), Duration: d}
		switch {
		case ringing:
			ev.Kind = Acknowledge
		case d > LongMs:
			ev.Kind = Long
		default:
			ev.Kind = Short
		}
		c.out = append(c.out, ev)
	}

	if c.chord && !anyDown {
		c.chord = false
		kind := Chord
		if ringing {
			kind = Acknowledge
		}
		c.out = append(c.out, Event{Kind: kind, Mask: c.mask})
		c.mask = 0
	}

	return c.out
}

// Package setup is the button-driven editor for the clock, the alarms and
// the countdown timer. It runs in the main loop and talks to the rest of
// the firmware only through Target.
package setup

import (
	"picoclock/clock"
	"picoclock/input"
)

// Domain is the thing being edited
type Domain uint8

const (
	None Domain = iota
	Clock
	Alarm
	Timer
)

func (d Domain) String() string {
	switch d {
	case Clock:
		return "clock"
	case Alarm:
		return "alarm"
	case Timer:
		return "timer"
	default:
		return "none"
	}
}

// State is None, or a domain with a step counted from 1
type State struct {
	Domain Domain
	Step   uint8
}

// Active reports whether a session is open
func (s State) Active() bool {
	return s.Domain != None
}

// Action tells the caller what a button event did outside the edited value
type Action uint8

const (
	NoAction Action = iota
	Opened
	Advanced
	Adjusted
	Closed
	DateScroll
	TempScroll
	ToggleChime
)

// Target is what the machine edits
type Target interface {
	Now() clock.WallClock
	SetTime(clock.WallClock)
	Alarm(i int) clock.AlarmSlot
	SetAlarm(i int, a clock.AlarmSlot)
	StartCountdown(seconds uint16)
	RequestSave()
}

// DefaultIdleTimeout closes a session after this many seconds without input
const DefaultIdleTimeout = 30

// Options configure a Machine
type Options struct {
	Primary     Domain // opened by a short Mode press: Clock or Alarm
	Sounds      uint8  // number of selectable alarm sounds
	IdleTimeout uint8  // seconds, 0 uses DefaultIdleTimeout
}

// Machine is the setup state machine
type Machine struct {
	target Target
	opts   Options

	state State
	idle  uint8
	value int
	dirty bool

	slot     int
	cursor   int // weekday under edit on the days step
	timerMin int
	timerSec int
}

// NewMachine creates a closed machine editing target
func NewMachine(target Target, opts Options) *Machine {
	if opts.Primary != Alarm {
		opts.Primary = Clock
	}
	if opts.Sounds == 0 {
		opts.Sounds = 1
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	return &Machine{target: target, opts: opts}
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// Value returns the value of the field being edited
func (m *Machine) Value() int {
	return m.value
}

// Slot returns the alarm slot being edited
func (m *Machine) Slot() int {
	return m.slot
}

// DayCursor returns the weekday (0 = Sunday) under the cursor while the
// alarm days step is open. Value then holds the day mask.
func (m *Machine) DayCursor() (int, bool) {
	if f, ok := m.field(); ok && f.id == fieldDays {
		return m.cursor, true
	}
	return 0, false
}

// Field returns the label of the field being edited
func (m *Machine) Field() string {
	if f, ok := m.field(); ok {
		return f.label
	}
	return ""
}

// Handle processes one classified button event
func (m *Machine) Handle(ev input.Event) Action {
	if ev.Kind == input.Chord || ev.Kind == input.Acknowledge {
		return NoAction
	}
	m.idle = 0

	if !m.state.Active() {
		return m.handleClosed(ev)
	}

	switch {
	case ev.Button == input.Mode && ev.Kind == input.Short:
		return m.advance()
	case ev.Button == input.Up:
		m.adjust(+1, ev.Kind == input.Long)
		return Adjusted
	case ev.Button == input.Down:
		m.adjust(-1, ev.Kind == input.Long)
		return Adjusted
	}
	return NoAction
}

func (m *Machine) handleClosed(ev input.Event) Action {
	switch ev.Button {
	case input.Mode:
		if ev.Kind == input.Short {
			m.open(m.opts.Primary)
		} else {
			m.open(m.secondary())
		}
		return Opened
	case input.Up:
		if ev.Kind == input.Short {
			return DateScroll
		}
		return ToggleChime
	case input.Down:
		if ev.Kind == input.Short {
			return TempScroll
		}
		m.open(Timer)
		return Opened
	}
	return NoAction
}

func (m *Machine) secondary() Domain {
	if m.opts.Primary == Alarm {
		return Clock
	}
	return Alarm
}

func (m *Machine) open(d Domain) {
	m.state = State{Domain: d, Step: 1}
	m.idle = 0
	if d == Timer {
		m.timerMin, m.timerSec = 0, 0
	}
	m.load()
}

func (m *Machine) advance() Action {
	m.commit()
	m.state.Step++
	if int(m.state.Step) > len(steps[m.state.Domain]) {
		m.finish(true)
		return Closed
	}
	m.load()
	return Advanced
}

// TickSecond counts idle time; it returns true when the session closed on
// timeout.
func (m *Machine) TickSecond() bool {
	if !m.state.Active() {
		return false
	}
	m.idle++
	if m.idle < m.opts.IdleTimeout {
		return false
	}
	m.commit()
	m.finish(false)
	return true
}

// finish closes the session. Only an explicit walk through every timer
// step starts the countdown.
func (m *Machine) finish(completed bool) {
	if completed && m.state.Domain == Timer {
		if secs := m.timerMin*60 + m.timerSec; secs > 0 {
			m.target.StartCountdown(uint16(secs))
		}
	}
	m.state = State{}
	m.idle = 0
	m.dirty = false
	m.target.RequestSave()
}

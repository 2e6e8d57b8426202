package setup

import "picoclock/clock"

type fieldID uint8

const (
	fieldHour fieldID = iota
	fieldMinute
	fieldYear
	fieldMonth
	fieldDay
	fieldSlot
	fieldDays
	fieldEnabled
	fieldSound
	fieldTimerMin
	fieldTimerSec
)

type field struct {
	id    fieldID
	label string
	big   int // step for long presses, 0 means same as short
}

var steps = [...][]field{
	None: nil,
	Clock: {
		{fieldHour, "hr", 0},
		{fieldMinute, "min", 0},
		{fieldYear, "yr", 10},
		{fieldMonth, "mon", 3},
		{fieldDay, "day", 7},
	},
	Alarm: {
		{fieldSlot, "al", 0},
		{fieldHour, "hr", 0},
		{fieldMinute, "min", 0},
		{fieldDays, "days", 0},
		{fieldEnabled, "on", 0},
		{fieldSound, "snd", 0},
	},
	Timer: {
		{fieldTimerMin, "min", 10},
		{fieldTimerSec, "sec", 10},
	},
}

// DaysInWeek is the range of the day cursor on the alarm days step
const DaysInWeek = 7

func (m *Machine) field() (field, bool) {
	fs := steps[m.state.Domain]
	i := int(m.state.Step) - 1
	if i < 0 || i >= len(fs) {
		return field{}, false
	}
	return fs[i], true
}

// bounds returns the inclusive range of the current field
func (m *Machine) bounds(id fieldID) (int, int) {
	switch id {
	case fieldHour:
		return 0, 23
	case fieldMinute:
		return 0, 59
	case fieldYear:
		return clock.MinYear, clock.MaxYear
	case fieldMonth:
		return 1, 12
	case fieldDay:
		now := m.target.Now()
		return 1, clock.DaysInMonth(int(now.Year), int(now.Month))
	case fieldSlot:
		return 0, clock.AlarmSlots - 1
	case fieldDays:
		return 0, int(clock.Everyday)
	case fieldEnabled:
		return 0, 1
	case fieldSound:
		return 0, int(m.opts.Sounds) - 1
	case fieldTimerMin:
		return 0, 99
	case fieldTimerSec:
		return 0, 59
	}
	return 0, 0
}

// load reads the current field's value from the target
func (m *Machine) load() {
	m.dirty = false
	f, ok := m.field()
	if !ok {
		return
	}

	if m.state.Domain == Alarm && f.id != fieldSlot {
		a := m.target.Alarm(m.slot)
		switch f.id {
		case fieldHour:
			m.value = int(a.Hour)
		case fieldMinute:
			m.value = int(a.Minute)
		case fieldDays:
			m.value = int(a.Days)
			m.cursor = 0
		case fieldEnabled:
			m.value = 0
			if a.Enabled {
				m.value = 1
			}
		case fieldSound:
			m.value = int(a.Sound)
		}
		return
	}

	now := m.target.Now()
	switch f.id {
	case fieldHour:
		m.value = int(now.Hour)
	case fieldMinute:
		m.value = int(now.Minute)
	case fieldYear:
		m.value = int(now.Year)
	case fieldMonth:
		m.value = int(now.Month)
	case fieldDay:
		m.value = int(now.Day)
	case fieldSlot:
		m.value = m.slot
	case fieldTimerMin:
		m.value = m.timerMin
	case fieldTimerSec:
		m.value = m.timerSec
	}
}

// adjust moves the value by dir, or by the field's long step, wrapping
// within its bounds
func (m *Machine) adjust(dir int, long bool) {
	f, ok := m.field()
	if !ok {
		return
	}
	if f.id == fieldDays {
		m.adjustDays(dir, long)
		return
	}
	step := 1
	if long && f.big > 0 {
		step = f.big
	}
	lo, hi := m.bounds(f.id)
	span := hi - lo + 1

	v := m.value - lo + dir*step
	v %= span
	if v < 0 {
		v += span
	}
	m.value = lo + v
	m.dirty = true
}

// adjustDays edits the day mask one day at a time: a long press moves the
// cursor, a short press toggles the day under it
func (m *Machine) adjustDays(dir int, long bool) {
	if long {
		m.cursor = (m.cursor + dir + DaysInWeek) % DaysInWeek
		return
	}
	m.value ^= int(clock.MaskOf(uint8(m.cursor)))
	m.dirty = true
}

// commit writes a dirty value back to the target
func (m *Machine) commit() {
	f, ok := m.field()
	if !ok {
		return
	}

	// The slot selector and timer fields are held here, not in the target
	switch f.id {
	case fieldSlot:
		m.slot = m.value
		return
	case fieldTimerMin:
		m.timerMin = m.value
		return
	case fieldTimerSec:
		m.timerSec = m.value
		return
	}
	if !m.dirty {
		return
	}
	m.dirty = false

	if m.state.Domain == Alarm {
		a := m.target.Alarm(m.slot)
		switch f.id {
		case fieldHour:
			a.Hour = uint8(m.value)
		case fieldMinute:
			a.Minute = uint8(m.value)
		case fieldDays:
			a.Days = clock.DayMask(m.value)
		case fieldEnabled:
			a.Enabled = m.value == 1
		case fieldSound:
			a.Sound = uint8(m.value)
		}
		m.target.SetAlarm(m.slot, a)
		return
	}

	w := m.target.Now()
	y, mo, d := int(w.Year), int(w.Month), int(w.Day)
	switch f.id {
	case fieldHour:
		w.Hour = uint8(m.value)
	case fieldMinute:
		w.Minute = uint8(m.value)
		w.Second = 0
	case fieldYear:
		y = m.value
	case fieldMonth:
		mo = m.value
	case fieldDay:
		d = m.value
	}
	w.SetDate(y, mo, d)
	m.target.SetTime(w)
}

// Package config is the persisted configuration record: its defaults, its
// on-flash framing and the mapping onto the evaluator's settings.
package config

import (
	"picoclock/clock"
)

// Version is bumped when a field changes meaning
const Version = 1

// Defaults
const (
	DefaultRingTimeout  = 60
	DefaultPauseHours   = 8
	DefaultScrollPeriod = 5
	DefaultChimeStart   = 8
	DefaultChimeEnd     = 22
	DefaultNightStart   = 22
	DefaultNightEnd     = 6

	MinOffset = -12 * 60
	MaxOffset = 14 * 60
)

// Alarm is the stored part of an alarm slot. The enabled flag is not
// stored: every alarm comes up disabled after power loss.
type Alarm struct {
	Hour   uint8  `json:"hour"`
	Minute uint8  `json:"minute"`
	Days   uint8  `json:"days"`
	Sound  uint8  `json:"sound"`
	Label  string `json:"label,omitempty"`
}

// CalendarEvent is a stored yearly reminder
type CalendarEvent struct {
	Day   uint8  `json:"day"`
	Month uint8  `json:"month"`
	Text  string `json:"text"`
}

// Record is everything the clock keeps across power cycles
type Record struct {
	Version      uint8                   `json:"version"`
	Alarms       [clock.AlarmSlots]Alarm `json:"alarms"`
	ChimeMode    uint8                   `json:"chime_mode"`
	ChimeStart   uint8                   `json:"chime_start"`
	ChimeEnd     uint8                   `json:"chime_end"`
	NightLight   bool                    `json:"night_light"`
	NightStart   uint8                   `json:"night_start"`
	NightEnd     uint8                   `json:"night_end"`
	Region       uint8                   `json:"region"`
	Offset       int16                   `json:"offset"`
	Summer       bool                    `json:"summer"`
	PauseHours   uint8                   `json:"pause_hours"`
	RingTimeout  uint16                  `json:"ring_timeout"`
	ScrollPeriod uint8                   `json:"scroll_period"`
	Hour12       bool                    `json:"hour12"`
	AlarmFirst   bool                    `json:"alarm_first"`
	Calendar     []CalendarEvent         `json:"calendar,omitempty"`
}

// Defaults returns the factory configuration
func Defaults() Record {
	r := Record{
		Version:      Version,
		ChimeMode:    uint8(clock.ChimeHourly),
		ChimeStart:   DefaultChimeStart,
		ChimeEnd:     DefaultChimeEnd,
		NightStart:   DefaultNightStart,
		NightEnd:     DefaultNightEnd,
		PauseHours:   DefaultPauseHours,
		RingTimeout:  DefaultRingTimeout,
		ScrollPeriod: DefaultScrollPeriod,
	}
	for i := range r.Alarms {
		r.Alarms[i] = Alarm{Hour: 7, Days: uint8(clock.Weekdays)}
	}
	return r
}

// applyDefaults repairs out of range fields one at a time, so a record
// from an older version keeps everything that is still valid
func (r *Record) applyDefaults() {
	d := Defaults()
	r.Version = Version

	for i := range r.Alarms {
		a := &r.Alarms[i]
		if a.Hour > 23 || a.Minute > 59 {
			a.Hour, a.Minute = d.Alarms[i].Hour, d.Alarms[i].Minute
		}
		a.Days &^= 1
	}
	if r.ChimeMode > uint8(clock.ChimeHalfHourly) {
		r.ChimeMode = d.ChimeMode
	}
	if r.ChimeStart > 23 || r.ChimeEnd > 23 {
		r.ChimeStart, r.ChimeEnd = d.ChimeStart, d.ChimeEnd
	}
	if r.NightStart > 23 || r.NightEnd > 23 {
		r.NightStart, r.NightEnd = d.NightStart, d.NightEnd
	}
	if int(r.Region) >= len(clock.Rules) {
		r.Region = clock.RegionNone
		r.Summer = false
	}
	if r.Offset < MinOffset || r.Offset > MaxOffset {
		r.Offset = 0
	}
	if r.RingTimeout == 0 {
		r.RingTimeout = d.RingTimeout
	}
	if r.ScrollPeriod > 60 {
		r.ScrollPeriod = d.ScrollPeriod
	}

	cal := r.Calendar[:0]
	for _, ev := range r.Calendar {
		if ev.Month >= 1 && ev.Month <= 12 && ev.Day >= 1 && ev.Day <= 31 {
			cal = append(cal, ev)
		}
	}
	r.Calendar = cal
}

// Settings converts the record for the evaluator. Alarms come up disabled.
func (r Record) Settings() clock.Settings {
	s := clock.Settings{
		ChimeMode:    clock.ChimeMode(r.ChimeMode),
		ChimeStart:   r.ChimeStart,
		ChimeEnd:     r.ChimeEnd,
		NightLight:   r.NightLight,
		NightStart:   r.NightStart,
		NightEnd:     r.NightEnd,
		Region:       r.Region,
		Offset:       r.Offset,
		Summer:       r.Summer,
		PauseHours:   r.PauseHours,
		RingTimeout:  r.RingTimeout,
		ScrollPeriod: r.ScrollPeriod,
	}
	for i, a := range r.Alarms {
		s.Alarms[i] = clock.AlarmSlot{
			Hour:   a.Hour,
			Minute: a.Minute,
			Days:   clock.DayMask(a.Days),
			Sound:  a.Sound,
			Label:  a.Label,
		}
	}
	for _, ev := range r.Calendar {
		s.Calendar = append(s.Calendar, clock.CalendarEvent{Day: ev.Day, Month: ev.Month, Text: ev.Text})
	}
	return s
}

// Update copies the evaluator's settings into the record, keeping the
// fields the evaluator does not know about
func (r *Record) Update(s clock.Settings) {
	r.ChimeMode = uint8(s.ChimeMode)
	r.ChimeStart, r.ChimeEnd = s.ChimeStart, s.ChimeEnd
	r.NightLight = s.NightLight
	r.NightStart, r.NightEnd = s.NightStart, s.NightEnd
	r.Region, r.Offset, r.Summer = s.Region, s.Offset, s.Summer
	r.PauseHours = s.PauseHours
	r.RingTimeout = s.RingTimeout
	r.ScrollPeriod = s.ScrollPeriod
	for i, a := range s.Alarms {
		r.Alarms[i] = Alarm{Hour: a.Hour, Minute: a.Minute, Days: uint8(a.Days), Sound: a.Sound, Label: a.Label}
	}
	r.Calendar = r.Calendar[:0]
	for _, ev := range s.Calendar {
		r.Calendar = append(r.Calendar, CalendarEvent{Day: ev.Day, Month: ev.Month, Text: ev.Text})
	}
}

package clock

import (
	"sync/atomic"
	"time"

	"picoclock/core"
	"picoclock/queue"
)

// RingCountdown is the ringing bit used by the countdown timer; alarm slots
// use bits 0 to AlarmSlots-1.
const RingCountdown = AlarmSlots

// Event source ids for the debug event ring
const (
	SourceEvents = 1
	SourceDST    = 2
)

// Settings is the part of the configuration the evaluator works from
type Settings struct {
	Alarms       [AlarmSlots]AlarmSlot
	ChimeMode    ChimeMode
	ChimeStart   uint8
	ChimeEnd     uint8
	NightLight   bool
	NightStart   uint8
	NightEnd     uint8
	Region       uint8
	Offset       int16 // UTC offset in minutes currently in effect
	Summer       bool
	PauseHours   uint8
	RingTimeout  uint16 // seconds
	ScrollPeriod uint8  // minutes between periodic scrolls, 0 disables
	Calendar     []CalendarEvent
}

// Report summarises one evaluation for the second callback's caller
type Report struct {
	Started  uint16 // ringing bits that began this second
	Ringing  uint16
	Chime    Chime
	TimedOut bool
	DST      bool
}

// Evaluator owns the wall clock. Tick runs in the one-second callback;
// everything else is called from the main loop and takes a short critical
// section, or is a single atomic value.
type Evaluator struct {
	now       WallClock
	published atomic.Uint64

	settings   Settings
	pause      Pause
	chime      chimeLatch
	dst        DSTState
	countdown  Countdown
	dstErrYear uint16

	ringing atomic.Uint32
	ringFor uint16
	ack     atomic.Bool
	night   atomic.Bool
	paused  atomic.Bool

	events *queue.Ring[Event]
}

// NewEvaluator creates an evaluator that reports to events
func NewEvaluator(events *queue.Ring[Event]) *Evaluator {
	e := &Evaluator{events: events}
	e.now = Date(MinYear+26, 1, 1)
	e.dst.SetRegion(RegionNone)
	e.publish()
	return e
}

// Configure replaces the settings. Alarm enabled flags are taken as given.
func (e *Evaluator) Configure(s Settings) {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	e.settings = s
	e.dst.SetRegion(s.Region)
	e.dst.Summer = s.Summer
	e.dst.Offset = s.Offset
	if e.dst.Region == RegionNone {
		e.dst.Summer = false
	}
}

// Settings returns a copy of the settings including the current DST state
func (e *Evaluator) Settings() Settings {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	s := e.settings
	s.Region = e.dst.Region
	s.Summer = e.dst.Summer
	s.Offset = e.dst.Offset
	return s
}

// Now returns the last published wall clock
func (e *Evaluator) Now() WallClock {
	return Unpack(e.published.Load())
}

func (e *Evaluator) publish() {
	e.published.Store(e.now.Pack())
}

// SetTime replaces the wall clock with a local time in the current season,
// then re-evaluates DST.
func (e *Evaluator) SetTime(w WallClock) {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	w.SetDate(int(w.Year), int(w.Month), int(w.Day))
	e.now = w
	e.updateDST()
	e.publish()
}

// SetFromUTC sets the clock from a UTC instant, choosing the season from
// the DST rule rather than the current state.
func (e *Evaluator) SetFromUTC(t time.Time) {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	std := e.dst.StandardOffset()
	local := FromTime(t.UTC().Add(time.Duration(std) * time.Minute))
	e.dst.Summer = false
	e.dst.Offset = std
	e.now = local
	e.updateDST()
	e.publish()
	core.RecordEvent(core.EvtTimeResync, SourceDST, core.GetTime(), uint32(t.Unix()), 0)
}

// UTC returns the current time as a UTC instant
func (e *Evaluator) UTC() time.Time {
	w := e.Now()
	state := core.DisableInterrupts()
	offset := e.dst.Offset
	core.RestoreInterrupts(state)
	return w.Time(time.UTC).Add(-time.Duration(offset) * time.Minute)
}

// Alarm returns a copy of slot i
func (e *Evaluator) Alarm(i int) AlarmSlot {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	return e.settings.Alarms[i%AlarmSlots]
}

// SetAlarm replaces slot i
func (e *Evaluator) SetAlarm(i int, a AlarmSlot) {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	e.settings.Alarms[i%AlarmSlots] = a
}

// SetChime updates the chime mode
func (e *Evaluator) SetChime(mode ChimeMode) {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	e.settings.ChimeMode = mode
}

// TogglePause starts the alarm pause window with the configured length, or
// cancels it if running. It returns whether the pause is now active.
func (e *Evaluator) TogglePause() bool {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	if e.pause.Active() {
		e.pause.Cancel()
	} else {
		e.pause.Start(e.settings.PauseHours, e.now)
	}
	e.paused.Store(e.pause.Active())
	return e.pause.Active()
}

// SetPause starts a pause of hours, or cancels it for zero
func (e *Evaluator) SetPause(hours uint8) {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)

	e.pause.Start(hours, e.now)
	e.paused.Store(e.pause.Active())
}

// PauseHours returns the hours left in the pause window
func (e *Evaluator) PauseHours() uint8 {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	return e.pause.Hours
}

// StartCountdown runs the countdown timer from seconds
func (e *Evaluator) StartCountdown(seconds uint16) {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	e.countdown.Start(seconds)
}

// Countdown returns the countdown state
func (e *Evaluator) Countdown() Countdown {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	return e.countdown
}

// Acknowledge silences ringing at the next evaluation. Safe from any context.
func (e *Evaluator) Acknowledge() {
	e.ack.Store(true)
}

// Ringing returns the ringing bitmask. Safe from any context.
func (e *Evaluator) Ringing() uint16 {
	return uint16(e.ringing.Load())
}

// Night reports whether the night light window is active
func (e *Evaluator) Night() bool {
	return e.night.Load()
}

// Paused reports whether alarms are suppressed
func (e *Evaluator) Paused() bool {
	return e.paused.Load()
}

func (e *Evaluator) push(ev Event) {
	ev.Clock = e.now
	if err := e.events.TryPush(ev); err != nil {
		core.RecordEvent(core.EvtQueueFull, SourceEvents, core.GetTime(), uint32(ev.Kind), 0)
	}
}

func (e *Evaluator) updateDST() bool {
	changed, err := e.dst.UpdateDSTStatus(&e.now)
	if err != nil {
		if e.dstErrYear != e.now.Year {
			e.dstErrYear = e.now.Year
			core.RecordEvent(core.EvtDSTUncovered, e.dst.Region, core.GetTime(), uint32(e.now.Year), 0)
		}
		return false
	}
	if changed {
		var summer uint32
		if e.dst.Summer {
			summer = 1
		}
		core.RecordEvent(core.EvtDSTTransition, e.dst.Region, core.GetTime(), summer, uint32(e.now.Pack()))
	}
	return changed
}

// Tick is the body of the one-second callback
func (e *Evaluator) Tick() Report {
	var r Report
	s := &e.settings

	ringing := uint16(e.ringing.Load())
	if e.ack.Swap(false) {
		ringing = 0
		e.ringFor = 0
	}

	carry := e.now.Tick()
	if carry&CarryYear != 0 && e.dst.Region != RegionNone {
		if err := e.dst.rule.Prepare(int(e.now.Year)); err != nil {
			core.RecordEvent(core.EvtDSTUncovered, e.dst.Region, core.GetTime(), uint32(e.now.Year), 0)
		}
	}

	if e.now.Second == 0 {
		if e.updateDST() {
			r.DST = true
			var summer uint8
			if e.dst.Summer {
				summer = 1
			}
			e.push(Event{Kind: EventDST, Slot: summer})
		}

		if e.pause.Active() {
			e.pause.tick(e.now)
			if !e.pause.Active() {
				e.paused.Store(false)
				e.push(Event{Kind: EventPauseEnded})
			}
		} else {
			for i := range s.Alarms {
				if s.Alarms[i].Matches(e.now) {
					r.Started |= 1 << i
					e.push(Event{Kind: EventAlarm, Slot: uint8(i), Text: s.Alarms[i].Label})
				}
			}
		}
	}

	if e.countdown.tick() {
		r.Started |= 1 << RingCountdown
		e.push(Event{Kind: EventCountdownDone, Slot: RingCountdown})
	}

	if r.Started != 0 {
		ringing |= r.Started
		e.ringFor = 0
	}
	if ringing != 0 {
		e.ringFor++
		if s.RingTimeout > 0 && e.ringFor >= s.RingTimeout {
			core.RecordEvent(core.EvtRingTimeout, 0, core.GetTime(), uint32(ringing), uint32(e.ringFor))
			ringing = 0
			e.ringFor = 0
			r.TimedOut = true
			e.push(Event{Kind: EventRingTimeout})
		}
	}
	e.ringing.Store(uint32(ringing))
	r.Ringing = ringing

	if c := e.chime.evaluate(s.ChimeMode, s.ChimeStart, s.ChimeEnd, e.now); c != NoChime && ringing == 0 {
		r.Chime = c
		e.push(Event{Kind: EventChime, Slot: uint8(c)})
	}

	if calendarDue(e.now) {
		for _, ev := range s.Calendar {
			if ev.On(e.now) {
				e.push(Event{Kind: EventCalendar, Text: ev.Text})
			}
		}
	}

	if s.ScrollPeriod > 0 && e.now.Second == 20 && e.now.Minute%s.ScrollPeriod == 0 {
		e.push(Event{Kind: EventScroll})
	}

	e.night.Store(s.NightLight && WindowActive(s.NightStart, s.NightEnd, e.now.Hour))

	if carry&CarryDay != 0 {
		e.push(Event{Kind: EventDateChanged})
	}

	e.publish()
	return r
}

package firmware

import (
	"context"

	"picoclock/clock"
	"picoclock/config"
	"picoclock/core"
	"picoclock/display"
	"picoclock/input"
	"picoclock/sensor"
	"picoclock/setup"
)

// Poll is one pass of the main loop. It consumes the button and clock
// queues, services the sensor channel, redraws when asked and writes the
// configuration back when a save is pending.
func (f *Firmware) Poll() {
	for {
		ev, ok := f.buttons.TryPop()
		if !ok {
			break
		}
		f.handleButton(ev)
	}

	for {
		ev, ok := f.events.TryPop()
		if !ok {
			break
		}
		f.handleEvent(ev)
	}

	if now := f.Clock.Now(); now.Second != f.lastSecond {
		f.lastSecond = now.Second
		f.everySecond()
	}

	f.pollSensor()

	if f.scrollStep.Swap(false) && f.text.Scrolling() {
		if !f.text.StepScroll() {
			f.refresh.Store(true)
		}
	}
	if !f.text.Scrolling() && f.refresh.Swap(false) {
		f.render()
	}

	if f.savePending.Swap(false) {
		f.save()
	}
}

// SetEventHook registers fn to see every clock event after the main loop
// has handled it
func (f *Firmware) SetEventHook(fn func(clock.Event)) {
	f.onEvent = fn
}

func (f *Firmware) handleButton(ev input.Event) {
	if ev.Kind == input.Chord {
		if f.Clock.TogglePause() {
			f.show("OFF " + core.Itoa(int(f.Clock.PauseHours())) + "h")
		} else {
			f.show("ALARM")
		}
		return
	}

	switch f.setup.Handle(ev) {
	case setup.DateScroll:
		f.text.Scroll(display.FormatDate(f.Clock.Now()))
	case setup.TempScroll:
		f.text.Scroll(f.temperatureText())
	case setup.ToggleChime:
		mode := clock.ChimeOff
		if f.Clock.Settings().ChimeMode == clock.ChimeOff {
			mode = clock.ChimeHourly
		}
		f.Clock.SetChime(mode)
		f.savePending.Store(true)
		if mode == clock.ChimeOff {
			f.show("CH OFF")
		} else {
			f.show("CH ON")
		}
	default:
		f.refresh.Store(true)
	}
}

func (f *Firmware) handleEvent(ev clock.Event) {
	switch ev.Kind {
	case clock.EventAlarm, clock.EventCountdownDone:
		core.DebugPrintln("[CLOCK] ringing slot " + core.Itoa(int(ev.Slot)))
	case clock.EventCalendar:
		f.text.Scroll(ev.Text)
	case clock.EventScroll:
		f.text.Scroll(display.FormatDate(ev.Clock) + "  " + f.temperatureText())
	case clock.EventDST:
		f.savePending.Store(true)
	case clock.EventPauseEnded:
		f.show("ALARM")
	}

	if f.onEvent != nil {
		f.onEvent(ev)
	}
}

func (f *Firmware) everySecond() {
	if f.setup.TickSecond() {
		f.refresh.Store(true)
	}
	if f.messageFor > 0 {
		f.messageFor--
		if f.messageFor == 0 {
			f.refresh.Store(true)
		}
	}

	f.seconds++
	if f.hw.Sensors != nil && f.seconds%SensorPeriod == 1 {
		if err := f.hw.Sensors.Request(sensor.RequestRead); err != nil {
			core.RecordEvent(core.EvtQueueFull, sensor.SourceSensor, core.GetTime(), 0, 0)
		}
	}
}

func (f *Firmware) pollSensor() {
	if f.hw.Sensors == nil {
		return
	}
	resp, ok := f.hw.Sensors.Response()
	if !ok {
		return
	}
	if resp.OK {
		f.reading = resp.Reading
		f.readingOK = true
	}
}

// show puts a short status message up instead of the time
func (f *Firmware) show(text string) {
	f.message = text
	f.messageFor = MessageTime
	f.refresh.Store(true)
}

func (f *Firmware) temperatureText() string {
	if !f.readingOK {
		return "--.-C"
	}
	return display.FormatTemperature(f.reading.TempC10, f.reading.Humidity10)
}

func (f *Firmware) render() {
	cursor, days := f.setup.DayCursor()
	switch {
	case days:
		f.text.Centered(display.FormatDays(clock.DayMask(f.setup.Value()), cursor, f.blink.Load()))
	case f.setup.State().Active():
		f.text.Centered(display.FormatField(f.setup.Field(), f.setup.Value(), f.blink.Load()))
	case f.messageFor > 0:
		f.text.Centered(f.message)
	default:
		f.text.Centered(display.FormatTime(f.Clock.Now(), f.record.Hour12, f.blink.Load()))
	}
}

func (f *Firmware) save() {
	f.record.Update(f.Clock.Settings())
	if err := config.Save(f.hw.Store, f.record); err != nil {
		core.DebugPrintln("[CONFIG] save failed: " + err.Error())
	}
}

func (f *Firmware) syncRTC() {
	if f.hw.RTC == nil {
		return
	}
	if err := f.hw.RTC.Set(f.Clock.UTC()); err != nil {
		core.DebugPrintln("[RTC] " + err.Error())
	}
}

// Resync sets the clock from src and writes the result to the RTC
func (f *Firmware) Resync(ctx context.Context, src TimeSource) error {
	t, err := src.Resync(ctx)
	if err != nil {
		return err
	}
	f.Clock.SetFromUTC(t)
	f.syncRTC()
	f.savePending.Store(true)
	f.refresh.Store(true)
	return nil
}

// Status is a snapshot for the console and the simulator
type Status struct {
	Now        clock.WallClock
	Ringing    uint16
	Paused     bool
	PauseHours uint8
	Countdown  clock.Countdown
	Night      bool
	Reading    sensor.Reading
	ReadingOK  bool
	Setup      setup.State
	Brightness uint8
	Drops      uint32 // rejected pushes across every queue
	Overruns   uint32
}

// Status returns a snapshot. Call from the main loop.
func (f *Firmware) Status() Status {
	s := Status{
		Now:        f.Clock.Now(),
		Ringing:    f.Clock.Ringing(),
		Paused:     f.Clock.Paused(),
		PauseHours: f.Clock.PauseHours(),
		Countdown:  f.Clock.Countdown(),
		Night:      f.Clock.Night(),
		Reading:    f.reading,
		ReadingOK:  f.readingOK,
		Setup:      f.setup.State(),
		Brightness: f.scanner.Brightness(),
	}
	s.Drops = f.buttons.Stats().Dropped + f.events.Stats().Dropped +
		f.simple.Queue().Stats().Dropped + f.tone.Queue().Stats().Dropped
	for _, t := range f.timers {
		s.Overruns += t.Overruns
	}
	return s
}

// Matrix returns the displayed frame buffer
func (f *Firmware) Matrix() *display.Matrix {
	return f.matrix
}

// Record returns the configuration as last loaded or saved
func (f *Firmware) Record() config.Record {
	return f.record
}

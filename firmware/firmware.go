// Package firmware wires the clock together: it owns every subsystem,
// registers the three periodic callbacks with the scheduler and runs the
// main loop body. Targets supply the Hardware and drive Dispatch and Poll.
package firmware

import (
	"context"
	"sync/atomic"
	"time"

	"picoclock/clock"
	"picoclock/config"
	"picoclock/core"
	"picoclock/display"
	"picoclock/input"
	"picoclock/queue"
	"picoclock/sensor"
	"picoclock/setup"
	"picoclock/sound"
)

// Version is reported in the console dictionary
const Version = "picoclock-1.0"

// Queue sizes; each holds one less than its size
const (
	ButtonQueueSize = 8
	EventQueueSize  = 16
	SoundQueueSize  = 32
)

// Timing of work driven from the one-millisecond callback, and of sensor
// polling driven from the main loop
const (
	BlinkMs       = 500
	ScrollStepMs  = 40
	LightSampleMs = 100
	SensorPeriod  = 60 // seconds
	MessageTime   = 2  // seconds a status message stays up
)

// Event ring sources
const (
	SourceButtons = 10
	SourceSound   = 11
)

// RTC is a battery-backed clock keeping UTC
type RTC interface {
	Now() (time.Time, error)
	Set(t time.Time) error
}

// TimeSource supplies the current UTC time from outside, e.g. a host
// with a synchronised clock
type TimeSource interface {
	Resync(ctx context.Context) (time.Time, error)
}

// Hardware is what a target provides. Optional parts are nil.
type Hardware struct {
	Buttons [input.NumButtons]core.GPIOPin // active low
	Beeper  sound.Buzzer
	Tone    sound.Buzzer
	Rows    display.RowWriter
	Store   config.Store

	Light   *display.Dimmer
	Sensors *sensor.Channel
	RTC     RTC
}

// Firmware owns all clock state. The three On* methods are the periodic
// callbacks; everything else runs in the main loop.
type Firmware struct {
	hw Hardware

	Clock      *clock.Evaluator
	sched      *core.Scheduler
	timers     []*core.Timer
	classifier *input.Classifier
	setup      *setup.Machine

	buttons *queue.Ring[input.Event]
	events  *queue.Ring[clock.Event]
	simple  *sound.Player
	tone    *sound.Player

	matrix  *display.Matrix
	scanner *display.Scanner
	text    *display.TextRenderer

	registry *core.CommandRegistry
	dict     *core.Dictionary

	record config.Record

	// Cross-context flags
	savePending atomic.Bool
	refresh     atomic.Bool
	scrollStep  atomic.Bool
	blink       atomic.Bool

	// Owned by the one-millisecond callback
	ms uint32

	// Owned by the main loop
	lastSecond uint8
	seconds    uint32
	reading    sensor.Reading
	readingOK  bool
	message    string
	messageFor uint8
	onEvent    func(clock.Event)
}

// New builds the firmware from hw, loading the stored configuration and,
// when fitted, the time from the RTC
func New(hw Hardware) *Firmware {
	if hw.Store == nil {
		hw.Store = &config.MemoryStore{}
	}

	f := &Firmware{
		hw:         hw,
		sched:      core.NewScheduler(),
		classifier: input.NewClassifier(),
		buttons:    queue.New[input.Event](ButtonQueueSize),
		events:     queue.New[clock.Event](EventQueueSize),
		matrix:     display.NewMatrix(),
		registry:   core.NewCommandRegistry(),
	}
	f.Clock = clock.NewEvaluator(f.events)
	f.simple = sound.NewPlayer(sound.Simple, queue.New[sound.Command](SoundQueueSize), hw.Beeper)
	f.tone = sound.NewPlayer(sound.Tone, queue.New[sound.Command](SoundQueueSize), hw.Tone)
	sound.Pair(f.simple, f.tone)
	f.scanner = display.NewScanner(f.matrix, hw.Rows)
	f.text = display.NewTextRenderer(f.matrix)

	record, err := config.Load(hw.Store)
	if err != nil {
		core.DebugPrintln("[CONFIG] " + err.Error())
	}
	f.record = record
	f.Clock.Configure(record.Settings())

	primary := setup.Clock
	if record.AlarmFirst {
		primary = setup.Alarm
	}
	f.setup = setup.NewMachine(setupTarget{f}, setup.Options{
		Primary: primary,
		Sounds:  uint8(len(sound.Patterns)),
	})

	if hw.RTC != nil {
		if t, err := hw.RTC.Now(); err != nil {
			core.DebugPrintln("[RTC] " + err.Error())
		} else {
			f.Clock.SetFromUTC(t)
		}
	}

	f.dict = core.NewDictionary(f.registry, Version)
	f.registerCommands()
	f.dict.Build()

	f.lastSecond = f.Clock.Now().Second
	f.refresh.Store(true)
	return f
}

// Start registers the three periodic callbacks, first due one period
// after now
func (f *Firmware) Start(now uint32) {
	f.timers = []*core.Timer{
		f.sched.Every("display", now, core.DisplayPeriod, f.OnMillisecond),
		f.sched.Every("clock", now, core.SecondPeriod, f.OnSecond),
		f.sched.Every("sound", now, core.SoundPeriod, f.OnSound),
	}
}

// Dispatch runs whichever callbacks are due at now
func (f *Firmware) Dispatch(now uint32) {
	f.sched.Dispatch(now)
}

// NextWake returns when the next callback is due
func (f *Firmware) NextWake() (uint32, bool) {
	return f.sched.NextWake()
}

// OnMillisecond advances the display scan and the button classifier
func (f *Firmware) OnMillisecond(now uint32) {
	f.scanner.Step()

	var pressed [input.NumButtons]bool
	gpio := core.MustGPIO()
	for i, pin := range f.hw.Buttons {
		pressed[i] = !gpio.ReadPin(pin)
	}

	for _, ev := range f.classifier.Tick(pressed, f.Clock.Ringing() != 0) {
		if ev.Kind == input.Acknowledge {
			f.acknowledge()
			continue
		}
		if err := f.buttons.TryPush(ev); err != nil {
			core.RecordEvent(core.EvtQueueFull, SourceButtons, now, uint32(ev.Button), 0)
		}
	}

	f.ms++
	if f.ms%BlinkMs == 0 {
		f.blink.Store(!f.blink.Load())
		f.refresh.Store(true)
	}
	if f.ms%ScrollStepMs == 0 {
		f.scrollStep.Store(true)
	}
	if f.hw.Light != nil && f.ms%LightSampleMs == 0 {
		if err := f.hw.Light.Sample(); err == nil {
			f.scanner.SetBrightness(f.hw.Light.Level(f.Clock.Night()))
		}
	}
}

func (f *Firmware) acknowledge() {
	f.Clock.Acknowledge()
	f.simple.Silence()
	f.tone.Silence()
}

// OnSecond runs the evaluator and turns its report into sound
func (f *Firmware) OnSecond(now uint32) {
	r := f.Clock.Tick()

	switch {
	case r.TimedOut:
		f.simple.Silence()
		f.tone.Silence()
	case r.Ringing != 0:
		if f.simple.Drained() && f.tone.Drained() {
			f.play(f.ringPattern(r.Ringing), now)
		}
	case r.Chime == clock.HourChime:
		f.play(sound.HourChime, now)
	case r.Chime == clock.HalfHourChime:
		f.play(sound.HalfHourChime, now)
	}

	if r.DST {
		f.savePending.Store(true)
	}
	f.refresh.Store(true)
}

func (f *Firmware) ringPattern(ringing uint16) sound.Pattern {
	for slot := 0; slot < clock.AlarmSlots; slot++ {
		if ringing&(1<<slot) != 0 {
			return sound.PatternFor(f.Clock.Alarm(slot).Sound)
		}
	}
	return sound.Patterns[0]
}

func (f *Firmware) play(p sound.Pattern, now uint32) {
	if err := sound.Enqueue(p, f.simple.Queue(), f.tone.Queue()); err != nil {
		core.RecordEvent(core.EvtQueueFull, SourceSound, now, 0, 0)
	}
}

// OnSound drives both buzzers
func (f *Firmware) OnSound(now uint32) {
	f.simple.Tick(core.SoundPeriod / core.TicksPerMillisecond)
	f.tone.Tick(core.SoundPeriod / core.TicksPerMillisecond)
}

// setupTarget lets the setup machine edit the clock
type setupTarget struct {
	f *Firmware
}

func (t setupTarget) Now() clock.WallClock { return t.f.Clock.Now() }

func (t setupTarget) SetTime(w clock.WallClock) {
	t.f.Clock.SetTime(w)
	t.f.syncRTC()
}

func (t setupTarget) Alarm(i int) clock.AlarmSlot { return t.f.Clock.Alarm(i) }

func (t setupTarget) SetAlarm(i int, a clock.AlarmSlot) { t.f.Clock.SetAlarm(i, a) }

func (t setupTarget) StartCountdown(seconds uint16) { t.f.Clock.StartCountdown(seconds) }

func (t setupTarget) RequestSave() { t.f.savePending.Store(true) }

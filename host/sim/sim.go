// Package sim runs the clock firmware on a host. A single loop goroutine
// plays core 0, stepping the scheduler from a one millisecond ticker and
// running the main loop body after each step; a second goroutine plays
// core 1 and serves sensor requests. Everything else reaches the firmware
// through the loop's command channel.
package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/net/trace"

	"picoclock/clock"
	"picoclock/config"
	"picoclock/core"
	"picoclock/display"
	"picoclock/firmware"
	"picoclock/input"
	"picoclock/sensor"
	"picoclock/sound"
)

var ErrBusy = errors.New("simulator busy")

// ButtonSource supplies physical button states
type ButtonSource interface {
	Pressed() ([input.NumButtons]bool, error)
	Close() error
}

// Options configure a Sim. Nil parts are left out.
type Options struct {
	Settings  Settings
	Store     config.Store
	RTC       firmware.RTC
	Metrics   *Metrics
	Publisher Publisher
	Buttons   ButtonSource
	Source    firmware.TimeSource
}

// Snapshot is the state the web view reads
type Snapshot struct {
	Status firmware.Status
	Rows   [display.Height]uint32
	Tone   uint32
	Beeper bool
}

type published struct {
	ev clock.Event
	at time.Time
}

// Sim is a running clock
type Sim struct {
	fw      *firmware.Firmware
	gpio    *GPIO
	pwm     *PWM
	adc     *ADC
	climate *Climate
	worker  *sensor.Worker

	opts    Options
	metrics *Metrics
	log     trace.EventLog

	cmds    chan func()
	events  chan published
	dropped int
	now     uint32
	started time.Time

	mu       sync.Mutex
	snapshot Snapshot
}

// New builds the firmware on simulated hardware. The HAL drivers are
// process-wide, so only one Sim may run at a time.
func New(opts Options) *Sim {
	s := &Sim{
		gpio:    &GPIO{},
		pwm:     &PWM{},
		adc:     &ADC{},
		climate: NewClimate(opts.Settings.Temperature, opts.Settings.Humidity),
		opts:    opts,
		metrics: opts.Metrics,
		log:     trace.NewEventLog("picoclock", "sim"),
		cmds:    make(chan func(), 16),
		events:  make(chan published, 64),
		started: time.Now(),
	}
	core.SetGPIODriver(s.gpio)
	core.SetPWMDriver(s.pwm)
	core.SetADCDriver(s.adc)
	core.SetTime(0)
	s.adc.SetLight(opts.Settings.Light)

	channel := sensor.NewChannel()
	s.worker = sensor.NewWorker(channel, s.climate)

	s.fw = firmware.New(firmware.Hardware{
		Buttons: buttonPins,
		Beeper:  sound.PinBuzzer{Pin: PinBeeper},
		Tone:    sound.ToneBuzzer{Pin: PinTone},
		Rows:    &Rows{},
		Store:   opts.Store,
		Light:   display.NewDimmer(LightSensor),
		Sensors: channel,
		RTC:     opts.RTC,
	})
	s.fw.SetEventHook(s.onEvent)
	s.fw.Start(0)
	s.takeSnapshot()
	return s
}

func (s *Sim) onEvent(ev clock.Event) {
	s.log.Printf("%s slot=%d %s", ev.Kind, ev.Slot, ev.Text)
	if s.metrics != nil {
		s.metrics.Event(ev)
	}
	if s.opts.Publisher == nil {
		return
	}
	select {
	case s.events <- published{ev: ev, at: s.fw.Clock.UTC()}:
	default:
		s.dropped++
		s.log.Errorf("event queue full, dropped %d", s.dropped)
	}
}

// Step advances the firmware to now, in timer ticks since start. Run calls
// it from the ticker; tests call it directly.
func (s *Sim) Step(now uint32) {
	for drained := false; !drained; {
		select {
		case fn := <-s.cmds:
			fn()
		default:
			drained = true
		}
	}

	s.now = now
	core.SetTime(now)
	s.gpio.update(now)
	if s.opts.Buttons != nil {
		pressed, err := s.opts.Buttons.Pressed()
		if err != nil {
			s.log.Errorf("buttons: %v", err)
		}
		for i, pin := range buttonPins {
			s.gpio.external[pin] = pressed[i]
		}
	}

	s.fw.Dispatch(now)
	s.fw.Poll()
	s.takeSnapshot()
}

func (s *Sim) takeSnapshot() {
	snap := Snapshot{
		Status: s.fw.Status(),
		Tone:   s.pwm.Frequency(),
		Beeper: s.gpio.Level(PinBeeper),
	}
	m := s.fw.Matrix()
	for y := range snap.Rows {
		snap.Rows[y] = m.Row(uint8(y))
	}
	if s.metrics != nil {
		s.metrics.Observe(snap.Status)
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

// Snapshot returns the state after the last step
func (s *Sim) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Press holds a button for d, starting at the next step
func (s *Sim) Press(b input.Button, d time.Duration) error {
	if b >= input.NumButtons {
		return errors.New("unknown button")
	}
	fn := func() {
		s.gpio.press(buttonPins[b], s.now+uint32(d/time.Microsecond))
	}
	select {
	case s.cmds <- fn:
		return nil
	default:
		return ErrBusy
	}
}

// SetLight changes the ambient light reading
func (s *Sim) SetLight(v uint16) {
	s.adc.SetLight(v)
}

// do runs fn on the loop goroutine and waits for it
func (s *Sim) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fixedTime time.Time

func (f fixedTime) Resync(context.Context) (time.Time, error) {
	return time.Time(f), nil
}

// Sync sets the clock from the configured time source. The source is
// queried on the caller's goroutine so a slow server never stalls the
// display.
func (s *Sim) Sync(ctx context.Context) error {
	if s.opts.Source == nil {
		return errors.New("no time source")
	}
	t, err := s.opts.Source.Resync(ctx)
	if err != nil {
		s.log.Errorf("resync: %v", err)
		return err
	}
	var rerr error
	if err := s.do(ctx, func() { rerr = s.fw.Resync(ctx, fixedTime(t)) }); err != nil {
		return err
	}
	if rerr == nil {
		s.log.Printf("resync to %s", t.UTC().Format(time.RFC3339))
	}
	return rerr
}

// Run drives the simulator until ctx is done
func (s *Sim) Run(ctx context.Context) error {
	defer s.log.Finish()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.serveSensors(ctx) }()
	go func() { defer wg.Done(); s.publish(ctx) }()
	defer wg.Wait()

	if s.opts.Source != nil {
		wg.Add(1)
		go func() { defer wg.Done(); s.resync(ctx) }()
	}

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick := <-ticker.C:
			if s.metrics != nil {
				s.metrics.lag.Observe(time.Since(tick).Seconds())
			}
			s.Step(uint32(time.Since(s.started) / time.Microsecond))
		}
	}
}

// serveSensors plays core 1
func (s *Sim) serveSensors(ctx context.Context) {
	for ctx.Err() == nil {
		if !s.worker.Poll() {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func (s *Sim) publish(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-s.events:
			if err := s.opts.Publisher.Publish(p.ev, p.at); err != nil {
				s.log.Errorf("publish %s: %v", p.ev.Kind, err)
			}
		}
	}
}

func (s *Sim) resync(ctx context.Context) {
	interval := s.opts.Settings.ResyncInterval
	if interval <= 0 {
		interval = time.Hour
	}
	for {
		if err := s.Sync(ctx); err != nil && ctx.Err() == nil {
			core.DebugPrintln("[SIM] resync: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"picoclock/clock"
	"picoclock/config"
	"picoclock/core"
	"picoclock/input"
)

type fakeRTC struct{ t time.Time }

func (r *fakeRTC) Now() (time.Time, error) { return r.t, nil }
func (r *fakeRTC) Set(t time.Time) error   { r.t = t; return nil }

type fixedSource struct {
	t   time.Time
	err error
}

func (s fixedSource) Resync(ctx context.Context) (time.Time, error) { return s.t, s.err }

type harness struct {
	t     *testing.T
	sim   *Sim
	store *config.MemoryStore
	pub   *FakePublisher
	reg   *prometheus.Registry
	now   uint32
}

func newHarness(t *testing.T, src fixedSource) *harness {
	h := &harness{
		t:     t,
		store: &config.MemoryStore{},
		pub:   &FakePublisher{},
		reg:   prometheus.NewRegistry(),
	}
	h.sim = New(Options{
		Settings:  DefaultSettings(),
		Store:     h.store,
		RTC:       &fakeRTC{t: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)},
		Metrics:   NewMetrics(h.reg),
		Publisher: h.pub,
		Source:    src,
	})
	return h
}

func (h *harness) run(ms int) {
	for i := 0; i < ms; i++ {
		h.now += core.TicksPerMillisecond
		h.sim.Step(h.now)
		h.sim.worker.Poll()
	}
}

func TestSimKeepsTime(t *testing.T) {
	h := newHarness(t, fixedSource{})
	start := h.sim.Snapshot().Status.Now
	if start.Hour != 12 || start.Minute != 0 {
		t.Fatalf("Expected 12:00 from the RTC, got %02d:%02d", start.Hour, start.Minute)
	}

	h.run(3000)
	if got := h.sim.Snapshot().Status.Now.Second; got != 3 {
		t.Errorf("Expected 3 seconds elapsed, got %d", got)
	}
}

func TestSimShowsTimeOnMatrix(t *testing.T) {
	h := newHarness(t, fixedSource{})
	h.run(1100)

	var lit int
	for _, row := range h.sim.Snapshot().Rows {
		for ; row != 0; row &= row - 1 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("Expected lit pixels after the first second")
	}
}

func TestSimButtonPress(t *testing.T) {
	h := newHarness(t, fixedSource{})
	if err := h.sim.Press(input.Up, 100*time.Millisecond); err != nil {
		t.Fatalf("Press failed: %v", err)
	}
	if err := h.sim.Press(input.Down, 100*time.Millisecond); err != nil {
		t.Fatalf("Press failed: %v", err)
	}
	h.run(200)

	if !h.sim.Snapshot().Status.Paused {
		t.Error("Expected the Up+Down chord to pause alarms")
	}
	if err := h.sim.Press(input.NumButtons, time.Millisecond); err == nil {
		t.Error("Expected error for unknown button")
	}
}

func TestSimAlarmEventsQueuedForPublish(t *testing.T) {
	h := newHarness(t, fixedSource{})
	w := h.sim.fw.Clock.Now()
	w.Minute, w.Second = 30, 58
	h.sim.fw.Clock.SetTime(w)
	h.sim.fw.Clock.SetAlarm(2, clock.AlarmSlot{Enabled: true, Hour: w.Hour, Minute: 31, Days: clock.Everyday, Label: "tea"})

	h.run(2500)

	var found bool
	for len(h.sim.events) > 0 {
		p := <-h.sim.events
		if p.ev.Kind == clock.EventAlarm {
			found = true
			if p.ev.Slot != 2 || p.ev.Text != "tea" {
				t.Errorf("Expected slot 2 \"tea\", got %d %q", p.ev.Slot, p.ev.Text)
			}
		}
	}
	if !found {
		t.Fatal("Expected an alarm event queued for publishing")
	}
	if got := testutil.ToFloat64(h.sim.metrics.events.WithLabelValues("alarm")); got != 1 {
		t.Errorf("Expected alarm counter 1, got %v", got)
	}
	if got := testutil.ToFloat64(h.sim.metrics.ringing); got != 4 {
		t.Errorf("Expected ringing gauge 4, got %v", got)
	}
}

func TestSimSync(t *testing.T) {
	target := time.Date(2027, 1, 2, 3, 4, 5, 0, time.UTC)
	h := newHarness(t, fixedSource{t: target})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- h.sim.Sync(ctx) }()

	var err error
	for done := false; !done; {
		select {
		case err = <-errCh:
			done = true
		case <-ctx.Done():
			t.Fatal("Sync did not complete")
		default:
			h.run(1)
		}
	}
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	h.run(1)

	now := h.sim.Snapshot().Status.Now
	if now.Year != 2027 || now.Month != 1 || now.Day != 2 || now.Hour != 3 {
		t.Errorf("Expected 2027-01-02 03h, got %04d-%02d-%02d %02dh", now.Year, now.Month, now.Day, now.Hour)
	}
	if h.store.Writes == 0 {
		t.Error("Expected sync to save the configuration")
	}
}

func TestSimSyncError(t *testing.T) {
	h := newHarness(t, fixedSource{err: errors.New("no server")})
	if err := h.sim.Sync(context.Background()); err == nil {
		t.Error("Expected sync error")
	}

	noSource := New(Options{Settings: DefaultSettings()})
	if err := noSource.Sync(context.Background()); err == nil {
		t.Error("Expected error without a time source")
	}
}

func TestSimLightDimsDisplay(t *testing.T) {
	h := newHarness(t, fixedSource{})
	h.sim.SetLight(0xFFFF)
	h.run(2000)
	bright := h.sim.Snapshot().Status.Brightness

	h.sim.SetLight(0)
	h.run(2000)
	dark := h.sim.Snapshot().Status.Brightness

	if dark >= bright {
		t.Errorf("Expected darker room to dim the display, got %d then %d", bright, dark)
	}
}

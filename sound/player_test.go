package sound

import (
	"testing"

	"picoclock/queue"
)

type transition struct {
	tick int
	on   bool
	hz   uint16
}

type fakeBuzzer struct {
	tick   int
	on     bool
	events []transition
}

func (f *fakeBuzzer) On(hz uint16) {
	f.on = true
	f.events = append(f.events, transition{f.tick, true, hz})
}

func (f *fakeBuzzer) Off() {
	if !f.on {
		return
	}
	f.on = false
	f.events = append(f.events, transition{f.tick, false, 0})
}

func run(ticks int, players []*Player, buzzers []*fakeBuzzer) {
	for i := 0; i < ticks; i++ {
		for _, b := range buzzers {
			b.tick = i
		}
		for _, p := range players {
			p.Tick(50)
		}
	}
}

func newPair() (*Player, *Player, *fakeBuzzer, *fakeBuzzer) {
	sb, tb := &fakeBuzzer{}, &fakeBuzzer{}
	simple := NewPlayer(Simple, queue.New[Command](16), sb)
	tone := NewPlayer(Tone, queue.New[Command](16), tb)
	Pair(simple, tone)
	return simple, tone, sb, tb
}

func TestRepeatThenWait(t *testing.T) {
	simple, tone, sb, tb := newPair()

	simple.Queue().TryPush(Command{Duration: 100, Value: 3})
	simple.Queue().TryPush(Command{Duration: WaitOther})

	run(40, []*Player{simple, tone}, []*fakeBuzzer{sb, tb})

	want := []transition{
		{0, true, 0}, {2, false, 0},
		{4, true, 0}, {6, false, 0},
		{8, true, 0}, {10, false, 0},
	}
	if len(sb.events) != len(want) {
		t.Fatalf("Expected %d transitions, got %+v", len(want), sb.events)
	}
	for i := range want {
		if sb.events[i] != want[i] {
			t.Errorf("Transition %d: Expected %+v, got %+v", i, want[i], sb.events[i])
		}
	}
	if !simple.Drained() {
		t.Errorf("Expected simple player drained, state %v", simple.State())
	}
}

func TestWaitForOther(t *testing.T) {
	simple, tone, sb, tb := newPair()

	if err := Enqueue(Patterns[3], simple.Queue(), tone.Queue()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	run(40, []*Player{simple, tone}, []*fakeBuzzer{sb, tb})

	if len(tb.events) == 0 {
		t.Fatal("Tone player never started")
	}
	lastSimpleOff := sb.events[len(sb.events)-1]
	if lastSimpleOff.on {
		t.Fatalf("Expected simple buzzer to end silent, got %+v", sb.events)
	}
	if first := tb.events[0]; first.tick < lastSimpleOff.tick || first.hz != 1047 {
		t.Errorf("Expected tone to start no earlier than tick %d at 1047 Hz, got %+v", lastSimpleOff.tick, first)
	}
}

func TestRestCommand(t *testing.T) {
	_, tone, _, tb := newPair()

	tone.Queue().TryPush(Command{Duration: 100, Value: 0})
	tone.Queue().TryPush(Command{Duration: 100, Value: 440})
	run(10, []*Player{tone}, []*fakeBuzzer{tb})

	if len(tb.events) != 2 || tb.events[0] != (transition{2, true, 440}) || tb.events[1] != (transition{4, false, 0}) {
		t.Errorf("Expected a rest then 440 Hz from tick 2 to 4, got %+v", tb.events)
	}
}

func TestSilence(t *testing.T) {
	simple, _, sb, _ := newPair()

	simple.Queue().TryPush(Command{Duration: 1000, Value: 5})
	simple.Queue().TryPush(Command{Duration: 1000, Value: 5})
	run(3, []*Player{simple}, []*fakeBuzzer{sb})

	simple.Silence()
	run(1, []*Player{simple}, []*fakeBuzzer{sb})

	if sb.on {
		t.Error("Expected buzzer off after silence")
	}
	if !simple.Drained() {
		t.Errorf("Expected empty idle player, got %v with %d queued", simple.State(), simple.Queue().Len())
	}
}

func TestCorruptQueueSilences(t *testing.T) {
	simple, _, sb, _ := newPair()

	simple.Queue().TryPush(Command{Duration: 1000, Value: 5})
	simple.Queue().TryPush(Command{Duration: 1000, Value: 5})
	run(2, []*Player{simple}, []*fakeBuzzer{sb})
	if !sb.on || simple.State() != Sounding {
		t.Fatalf("Expected player sounding, got %v", simple.State())
	}

	simple.Queue().Corrupt()
	run(1, []*Player{simple}, []*fakeBuzzer{sb})

	if sb.on {
		t.Error("Expected buzzer off after queue corruption")
	}
	if simple.State() != Idle {
		t.Errorf("Expected idle player, got %v", simple.State())
	}
	if !simple.Queue().IsEmpty() {
		t.Errorf("Expected empty queue after reset, got %d", simple.Queue().Len())
	}
	if got := simple.Queue().Stats().Corrupted; got != 1 {
		t.Errorf("Expected 1 corruption counted, got %d", got)
	}

	// The reset ring takes new commands
	simple.Queue().TryPush(Command{Duration: 100, Value: 1})
	run(1, []*Player{simple}, []*fakeBuzzer{sb})
	if !sb.on {
		t.Error("Expected player to recover after the reset")
	}
}

func TestPatternFor(t *testing.T) {
	if PatternFor(200).Name != Patterns[0].Name {
		t.Error("Expected unknown selector to fall back to the first pattern")
	}
}

func TestEnqueueFull(t *testing.T) {
	simple := queue.New[Command](2)
	tone := queue.New[Command](2)
	if err := Enqueue(Patterns[2], simple, tone); err != queue.ErrFull {
		t.Errorf("Expected queue.ErrFull, got %v", err)
	}
}

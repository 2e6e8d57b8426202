// Package sound plays queued beep and tone sequences on the two buzzers.
// Producers push Commands into a player's ring; the 50 ms callback calls
// Tick on both players.
package sound

import (
	"sync/atomic"

	"picoclock/core"
	"picoclock/queue"
)

// WaitOther as a Duration holds the player until the other player is idle
// with an empty queue
const WaitOther = 0xFFFF

// Command is one queued sound. For the simple buzzer Value is the repeat
// count; for the tone buzzer it is the frequency in Hz. A zero Value rests
// for Duration.
type Command struct {
	Duration uint16 // milliseconds, or WaitOther
	Value    uint16
}

// Kind selects how a player reads Command.Value
type Kind uint8

const (
	Simple Kind = iota
	Tone
)

// State of a player
type State uint32

const (
	Idle State = iota
	Sounding
	Gap
	Rest
	Waiting
)

func (s State) String() string {
	switch s {
	case Sounding:
		return "sounding"
	case Gap:
		return "gap"
	case Rest:
		return "rest"
	case Waiting:
		return "waiting"
	default:
		return "idle"
	}
}

// Buzzer is the output a player drives. Both calls must be safe from the
// 50 ms callback.
type Buzzer interface {
	On(hz uint16)
	Off()
}

// Player consumes one ring of Commands
type Player struct {
	kind   Kind
	queue  *queue.Ring[Command]
	buzzer Buzzer
	other  *Player

	state     atomic.Uint32
	remaining int32
	repeats   uint16
	cmd       Command

	silence atomic.Bool
}

// NewPlayer creates an idle player reading from q
func NewPlayer(kind Kind, q *queue.Ring[Command], b Buzzer) *Player {
	return &Player{kind: kind, queue: q, buzzer: b}
}

// Pair links two players so WaitOther can refer to each other
func Pair(a, b *Player) {
	a.other = b
	b.other = a
}

// Queue returns the ring the player consumes
func (p *Player) Queue() *queue.Ring[Command] {
	return p.queue
}

// State returns the current state. Safe from any context.
func (p *Player) State() State {
	return State(p.state.Load())
}

// Drained reports that nothing is playing or queued. A player parked in
// Waiting counts as drained so two players waiting on each other proceed.
func (p *Player) Drained() bool {
	s := p.State()
	return (s == Idle || s == Waiting) && p.queue.IsEmpty()
}

// Silence stops the player at its next tick and discards its queue. Safe
// from any context.
func (p *Player) Silence() {
	p.silence.Store(true)
}

func (p *Player) setState(s State) {
	p.state.Store(uint32(s))
}

func (p *Player) stop() {
	p.buzzer.Off()
	p.remaining = 0
	p.repeats = 0
	p.setState(Idle)
}

// Tick advances the player by periodMs. It is the body of the sound
// callback and never blocks.
func (p *Player) Tick(periodMs uint16) {
	if p.silence.Swap(false) {
		p.queue.Drain()
		p.stop()
		return
	}
	if p.queue.Check() {
		core.RecordEvent(core.EvtQueueCorrupt, uint8(p.kind), core.GetTime(), 0, 0)
		p.stop()
		return
	}

	switch p.State() {
	case Sounding:
		p.remaining -= int32(periodMs)
		if p.remaining > 0 {
			return
		}
		p.buzzer.Off()
		if p.kind == Simple && p.repeats > 1 {
			p.repeats--
			p.remaining = int32(p.cmd.Duration)
			p.setState(Gap)
			return
		}
		p.setState(Idle)
	case Gap:
		p.remaining -= int32(periodMs)
		if p.remaining > 0 {
			return
		}
		p.sound()
		return
	case Rest:
		p.remaining -= int32(periodMs)
		if p.remaining > 0 {
			return
		}
		p.setState(Idle)
	case Waiting:
		if p.other != nil && !p.other.Drained() {
			return
		}
		p.setState(Idle)
	}

	p.next()
}

// next starts queued commands until one takes time or the queue is empty
func (p *Player) next() {
	for {
		cmd, ok := p.queue.TryPop()
		if !ok {
			return
		}
		p.cmd = cmd

		switch {
		case cmd.Duration == WaitOther:
			if p.other != nil && !p.other.Drained() {
				p.setState(Waiting)
				return
			}
		case cmd.Duration == 0:
		case cmd.Value == 0:
			p.remaining = int32(cmd.Duration)
			p.setState(Rest)
			return
		default:
			p.repeats = cmd.Value
			if p.kind == Tone {
				p.repeats = 1
			}
			p.sound()
			return
		}
	}
}

func (p *Player) sound() {
	var hz uint16
	if p.kind == Tone {
		hz = p.cmd.Value
	}
	p.buzzer.On(hz)
	p.remaining = int32(p.cmd.Duration)
	p.setState(Sounding)
}

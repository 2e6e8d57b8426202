package sound

import "picoclock/queue"

// Pattern is a pair of command lists played together, one per buzzer
type Pattern struct {
	Name   string
	Simple []Command
	Tone   []Command
}

// Alarm sound selectors, stored in each alarm slot
var Patterns = []Pattern{
	{
		Name:   "beep",
		Simple: []Command{{Duration: 100, Value: 3}, {Duration: 400, Value: 0}},
	},
	{
		Name:   "pulse",
		Simple: []Command{{Duration: 250, Value: 2}, {Duration: 250, Value: 0}},
	},
	{
		Name: "melody",
		Tone: []Command{
			{Duration: 150, Value: 880},
			{Duration: 150, Value: 988},
			{Duration: 300, Value: 1047},
			{Duration: 100, Value: 0},
		},
	},
	{
		Name:   "fanfare",
		Simple: []Command{{Duration: 100, Value: 2}},
		Tone: []Command{
			{Duration: WaitOther},
			{Duration: 200, Value: 1047},
			{Duration: 200, Value: 1319},
			{Duration: 400, Value: 1568},
		},
	},
}

var (
	HourChime     = Pattern{Name: "hour", Tone: []Command{{Duration: 300, Value: 1047}, {Duration: 500, Value: 784}}}
	HalfHourChime = Pattern{Name: "half", Tone: []Command{{Duration: 300, Value: 1047}}}
	Click         = Pattern{Name: "click", Simple: []Command{{Duration: 50, Value: 1}}}
)

// PatternFor returns the pattern for an alarm's sound selector, falling
// back to the first one
func PatternFor(selector uint8) Pattern {
	if int(selector) >= len(Patterns) {
		return Patterns[0]
	}
	return Patterns[selector]
}

// Enqueue pushes a pattern onto the producer side of both rings. It stops
// at the first full ring and returns queue.ErrFull.
func Enqueue(p Pattern, simple, tone *queue.Ring[Command]) error {
	for _, c := range p.Simple {
		if err := simple.TryPush(c); err != nil {
			return err
		}
	}
	for _, c := range p.Tone {
		if err := tone.TryPush(c); err != nil {
			return err
		}
	}
	return nil
}

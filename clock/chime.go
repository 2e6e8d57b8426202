package clock

// ChimeMode selects which boundaries chime
type ChimeMode uint8

const (
	ChimeOff ChimeMode = iota
	ChimeHourly
	ChimeHalfHourly
)

// Chime reports what sounded during a tick
type Chime uint8

const (
	NoChime Chime = iota
	HourChime
	HalfHourChime
)

// WindowActive is the day/night window predicate used for chimes and the
// night light. start <= end is a daytime window [start, end]; start > end
// wraps midnight (h >= start or h <= end).
func WindowActive(start, end, hour uint8) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}

// chimeLatch makes each boundary chime at most once. Flags clear two
// minutes after their boundary.
type chimeLatch struct {
	hourDone bool
	halfDone bool
}

func (c *chimeLatch) evaluate(mode ChimeMode, start, end uint8, w WallClock) Chime {
	switch w.Minute {
	case 2:
		c.hourDone = false
	case 32:
		c.halfDone = false
	}

	if mode == ChimeOff || !WindowActive(start, end, w.Hour) {
		return NoChime
	}

	switch {
	case w.Minute == 0 && !c.hourDone:
		c.hourDone = true
		return HourChime
	case w.Minute == 30 && mode == ChimeHalfHourly && !c.halfDone:
		c.halfDone = true
		return HalfHourChime
	}
	return NoChime
}

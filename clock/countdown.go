package clock

// MaxCountdown is the longest countdown the timer accepts (99:59)
const MaxCountdown = 99*60 + 59

// Countdown is the kitchen timer
type Countdown struct {
	Remaining uint16 // seconds
	Running   bool
}

// Start runs the countdown from seconds; zero stops it
func (c *Countdown) Start(seconds uint16) {
	if seconds > MaxCountdown {
		seconds = MaxCountdown
	}
	c.Remaining = seconds
	c.Running = seconds > 0
}

// Stop halts the countdown, keeping the remaining time
func (c *Countdown) Stop() {
	c.Running = false
}

// tick counts one second and reports whether the countdown just expired
func (c *Countdown) tick() bool {
	if !c.Running {
		return false
	}
	if c.Remaining > 0 {
		c.Remaining--
	}
	if c.Remaining == 0 {
		c.Running = false
		return true
	}
	return false
}

package core

// The RP2040 timer counts microseconds
const (
	TimerFreq = 1000000

	TicksPerMillisecond = TimerFreq / 1000
	TicksPerSecond      = TimerFreq
)

// Periods of the three clock activations, in timer ticks
const (
	DisplayPeriod = 1 * TicksPerMillisecond
	SoundPeriod   = 50 * TicksPerMillisecond
	SecondPeriod  = TicksPerSecond
)

var bootTime uint32

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// TimerFromMS converts milliseconds to timer ticks
func TimerFromMS(ms uint32) uint32 {
	return ms * TicksPerMillisecond
}

// TimerToMS converts timer ticks to milliseconds
func TimerToMS(ticks uint32) uint32 {
	return ticks / TicksPerMillisecond
}

// TimerInit records the boot tick
func TimerInit() {
	bootTime = GetTime()
}

// Uptime returns ticks elapsed since TimerInit
func Uptime() uint32 {
	return GetTime() - bootTime
}

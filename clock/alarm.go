package clock

// AlarmSlots is the number of alarms the clock keeps
const AlarmSlots = 9

// DayMask selects days of the week: bit 1 = Sunday ... bit 7 = Saturday.
// Bit 0 is unused.
type DayMask uint8

const (
	DaySunday DayMask = 1 << (iota + 1)
	DayMonday
	DayTuesday
	DayWednesday
	DayThursday
	DayFriday
	DaySaturday

	Weekdays = DayMonday | DayTuesday | DayWednesday | DayThursday | DayFriday
	Weekend  = DaySaturday | DaySunday
	Everyday = Weekdays | Weekend
)

// MaskOf returns the mask bit for a weekday (0 = Sunday)
func MaskOf(weekday uint8) DayMask {
	return DayMask(1) << (weekday%7 + 1)
}

// Has reports whether the weekday is selected
func (m DayMask) Has(weekday uint8) bool {
	return m&MaskOf(weekday) != 0
}

// AlarmSlot is one configurable alarm. Enabled is never persisted.
type AlarmSlot struct {
	Enabled bool
	Hour    uint8
	Minute  uint8
	Days    DayMask
	Sound   uint8
	Label   string
}

// Matches reports whether the alarm is due at w, ignoring seconds
func (a AlarmSlot) Matches(w WallClock) bool {
	return a.Enabled && a.Days.Has(w.Weekday) && a.Hour == w.Hour && a.Minute == w.Minute
}

// Pause suppresses alarm evaluation for a number of hours. The counter
// drops once per hour, at the minute the pause started.
type Pause struct {
	Hours    uint8
	Minute   uint8
	lastHour uint8
}

// Active reports whether alarms are currently suppressed
func (p Pause) Active() bool {
	return p.Hours > 0
}

// Start begins a pause of the given hours at w
func (p *Pause) Start(hours uint8, w WallClock) {
	p.Hours = hours
	p.Minute = w.Minute
	p.lastHour = w.Hour
}

// Cancel ends the pause immediately
func (p *Pause) Cancel() {
	p.Hours = 0
}

// tick is called every second and decrements the hour counter when the
// start minute comes around again
func (p *Pause) tick(w WallClock) {
	if p.Hours == 0 || w.Minute != p.Minute || w.Hour == p.lastHour {
		return
	}
	p.lastHour = w.Hour
	p.Hours--
}

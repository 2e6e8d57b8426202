package clock

// Calendar checks run at these minutes past every hour. The periodic scroll
// runs at second 20, so the two never start together.
const (
	CalendarMinuteA = 17
	CalendarMinuteB = 47
)

// CalendarEvent is a yearly reminder shown on its day
type CalendarEvent struct {
	Day   uint8
	Month uint8
	Text  string
}

// On reports whether the event falls on w's date
func (e CalendarEvent) On(w WallClock) bool {
	return e.Day == w.Day && e.Month == w.Month
}

func calendarDue(w WallClock) bool {
	return w.Second == 0 && (w.Minute == CalendarMinuteA || w.Minute == CalendarMinuteB)
}

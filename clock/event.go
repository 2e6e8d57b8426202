package clock

// EventKind tells the main loop what the second callback saw
type EventKind uint8

const (
	EventNone EventKind = iota
	EventAlarm
	EventCountdownDone
	EventRingTimeout
	EventChime
	EventCalendar
	EventScroll
	EventDST
	EventDateChanged
	EventPauseEnded
)

// Event is queued by the second callback for the main loop
type Event struct {
	Kind  EventKind
	Slot  uint8 // alarm slot, chime kind or summer flag
	Clock WallClock
	Text  string
}

func (k EventKind) String() string {
	switch k {
	case EventAlarm:
		return "alarm"
	case EventCountdownDone:
		return "countdown"
	case EventRingTimeout:
		return "ring_timeout"
	case EventChime:
		return "chime"
	case EventCalendar:
		return "calendar"
	case EventScroll:
		return "scroll"
	case EventDST:
		return "dst"
	case EventDateChanged:
		return "date"
	case EventPauseEnded:
		return "pause_ended"
	default:
		return "none"
	}
}

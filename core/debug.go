package core

import "sync/atomic"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures something worth diagnosing after the fact. Interrupt
// context records these instead of logging.
type Event struct {
	Type   uint8
	Source uint8  // subsystem specific (queue id, region, sensor retry...)
	Clock  uint32 // system ticks at the event
	Value1 uint32
	Value2 uint32
}

// Event type codes
const (
	EvtQueueFull      = 1 // producer dropped an item
	EvtQueueCorrupt   = 2 // ring indices out of range, ring reset
	EvtOverrun        = 3 // scheduler skipped missed periods
	EvtDSTUncovered   = 4 // DST rule has no matching day for the year
	EvtSensorFail     = 5 // sensor read failed after retries
	EvtConfigReset    = 6 // stored configuration rejected, defaults written
	EvtTimeResync     = 7 // wall clock replaced by host or RTC
	EvtRingTimeout    = 8 // ringing force-cleared without acknowledgement
	EvtDSTTransition  = 9 // summer/winter edge applied
	EvtPersistFailure = 10
	EvtBuzzerFail     = 11 // buzzer pin or PWM drive returned an error
)

// EventRingSize is the number of events kept for post-mortem
const EventRingSize = 32

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	debugEnabled atomic.Bool

	// eventRing is written from every context; each writer claims a slot
	// with an atomic increment so concurrent writers never share a slot.
	eventRing     [EventRingSize]Event
	eventRingNext atomic.Uint32

	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled.Load()
}

// InitAsyncDebug starts the async debug output goroutine.
// Call this from main() after SetDebugWriter.
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Main loop only; it may block on the underlying writer.
func DebugPrintln(msg string) {
	if debugEnabled.Load() && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message without blocking, dropping it if the
// channel is full or async output was never started
func DebugAsync(msg string) {
	if debugChan == nil || !debugEnabled.Load() {
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordEvent stores an event in the ring. Safe from any context.
func RecordEvent(eventType, source uint8, clock, value1, value2 uint32) {
	idx := (eventRingNext.Add(1) - 1) % EventRingSize
	eventRing[idx] = Event{
		Type:   eventType,
		Source: source,
		Clock:  clock,
		Value1: value1,
		Value2: value2,
	}
}

// Events returns the recorded events, oldest first
func Events() []Event {
	next := eventRingNext.Load()
	n := next
	if n > EventRingSize {
		n = EventRingSize
	}
	out := make([]Event, 0, n)
	for i := next - n; i != next; i++ {
		evt := eventRing[i%EventRingSize]
		if evt.Type == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// EventName returns a short printable name for an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtQueueFull:
		return "QUEUE_FULL"
	case EvtQueueCorrupt:
		return "QUEUE_CORRUPT"
	case EvtOverrun:
		return "OVERRUN"
	case EvtDSTUncovered:
		return "DST_UNCOVERED"
	case EvtSensorFail:
		return "SENSOR_FAIL"
	case EvtConfigReset:
		return "CONFIG_RESET"
	case EvtTimeResync:
		return "TIME_RESYNC"
	case EvtRingTimeout:
		return "RING_TIMEOUT"
	case EvtDSTTransition:
		return "DST_EDGE"
	case EvtPersistFailure:
		return "PERSIST_FAIL"
	case EvtBuzzerFail:
		return "BUZZER_FAIL"
	default:
		return "UNKNOWN"
	}
}

// DumpEvents writes the event ring through the debug writer
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[EVENTS] " + EventName(evt.Type) +
			" src=" + itoa(int(evt.Source)) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// ClearEvents empties the event ring
func ClearEvents() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingNext.Store(0)
}

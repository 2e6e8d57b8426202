package core

// Timer represents a scheduled activation
type Timer struct {
	Name     string
	WakeTime uint32 // absolute tick of the next activation
	Period   uint32 // ticks between activation starts, 0 for one-shot
	Handler  func(*Timer) uint8
	Next     *Timer

	Runs     uint32 // number of activations so far
	Overruns uint32 // activations dropped because dispatch fell too far behind
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// MaxCatchUp bounds how many missed periods a timer replays in a single
// dispatch before it is resynchronised to the current time.
const MaxCatchUp = 4

// Scheduler keeps timers sorted by wake time and runs the due ones.
// Periodic timers use negative-period semantics: the next wake time is the
// previous scheduled wake time plus the period, so the time spent in the
// handler never shifts later activations.
type Scheduler struct {
	list *Timer
	now  uint32
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Every registers fn to run every period ticks, first at start+period
func (s *Scheduler) Every(name string, start, period uint32, fn func(now uint32)) *Timer {
	t := &Timer{
		Name:     name,
		WakeTime: start + period,
		Period:   period,
		Handler: func(t *Timer) uint8 {
			fn(t.WakeTime)
			return SF_RESCHEDULE
		},
	}
	s.ScheduleTimer(t)
	return t
}

// ScheduleTimer adds a timer to the schedule
func (s *Scheduler) ScheduleTimer(t *Timer) {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	s.insertTimer(t)
}

// Cancel removes a timer from the schedule, if present
func (s *Scheduler) Cancel(t *Timer) {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	if s.list == t {
		s.list = t.Next
		t.Next = nil
		return
	}
	for cur := s.list; cur != nil; cur = cur.Next {
		if cur.Next == t {
			cur.Next = t.Next
			t.Next = nil
			return
		}
	}
}

// before reports whether tick a is earlier than tick b, tolerating
// wraparound of the 32-bit counter
func before(a, b uint32) bool {
	return int32(a-b) < 0
}

// insertTimer inserts a timer in sorted order by WakeTime
func (s *Scheduler) insertTimer(t *Timer) {
	if s.list == nil || before(t.WakeTime, s.list.WakeTime) {
		t.Next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.Next != nil && !before(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Dispatch runs every timer whose wake time is at or before now. A periodic
// timer that is several periods late is replayed up to MaxCatchUp times,
// then moved forward so it fires one period from now.
func (s *Scheduler) Dispatch(now uint32) {
	state := DisableInterrupts()
	defer RestoreInterrupts(state)

	s.now = now
	for s.list != nil && !before(now, s.list.WakeTime) {
		timer := s.list
		s.list = timer.Next
		timer.Next = nil

		result := timer.Handler(timer)
		timer.Runs++

		if result != SF_RESCHEDULE {
			continue
		}
		if timer.Period != 0 {
			timer.WakeTime += timer.Period
			if behind := now - timer.WakeTime; !before(now, timer.WakeTime) && behind >= MaxCatchUp*timer.Period {
				missed := behind / timer.Period
				timer.Overruns += missed
				timer.WakeTime += missed * timer.Period
				if !before(now, timer.WakeTime) {
					timer.WakeTime += timer.Period
				}
				RecordEvent(EvtOverrun, 0, now, missed, timer.Period)
			}
		}
		s.insertTimer(timer)
	}
}

// NextWake returns the wake time of the earliest timer
func (s *Scheduler) NextWake() (uint32, bool) {
	if s.list == nil {
		return 0, false
	}
	return s.list.WakeTime, true
}

// Now returns the tick passed to the most recent Dispatch
func (s *Scheduler) Now() uint32 {
	return s.now
}

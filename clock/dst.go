package clock

import "errors"

// ErrRuleNotCovered is returned when a rule has no matching transition day
// in the evaluated year or the region is unknown. The summer/winter state
// is left as it was.
var ErrRuleNotCovered = errors.New("dst rule not covered")

// Transition describes one DST edge: the first day in [DayMin, DayMax] of
// Month that falls on Weekday, at Hour. Hour may be 24, meaning midnight at
// the end of that day.
type Transition struct {
	Month   uint8
	Weekday uint8
	DayMin  uint8
	DayMax  uint8
	Hour    uint8
}

// day returns the day of month of the transition in year
func (t Transition) day(year int) (int, bool) {
	last := int(t.DayMax)
	if n := DaysInMonth(year, int(t.Month)); last > n {
		last = n
	}
	for d := int(t.DayMin); d <= last; d++ {
		if DayOfWeek(year, int(t.Month), d) == t.Weekday {
			return d, true
		}
	}
	return 0, false
}

// DSTRule is one row of the region table. Start.Hour is local standard
// time and End.Hour local summer time, unless UTC is set, in which case
// both are UTC.
type DSTRule struct {
	Name         string
	Start        Transition
	End          Transition
	ShiftMinutes int16
	UTC          bool

	// Derived for Year by Prepare
	Year         uint16
	StartYearDay uint16
	EndYearDay   uint16
	prepared     bool
}

// Region 0 disables DST
const RegionNone = 0

// Rules is the region table, indexed by the configured region number
var Rules = []DSTRule{
	{Name: "none"},
	{
		Name:         "australia",
		Start:        Transition{Month: 10, Weekday: Sunday, DayMin: 1, DayMax: 7, Hour: 2},
		End:          Transition{Month: 4, Weekday: Sunday, DayMin: 1, DayMax: 7, Hour: 3},
		ShiftMinutes: 60,
	},
	{
		Name:         "europe",
		Start:        Transition{Month: 3, Weekday: Sunday, DayMin: 25, DayMax: 31, Hour: 1},
		End:          Transition{Month: 10, Weekday: Sunday, DayMin: 25, DayMax: 31, Hour: 1},
		ShiftMinutes: 60,
		UTC:          true,
	},
	{
		Name:         "north-america",
		Start:        Transition{Month: 3, Weekday: Sunday, DayMin: 8, DayMax: 14, Hour: 2},
		End:          Transition{Month: 11, Weekday: Sunday, DayMin: 1, DayMax: 7, Hour: 2},
		ShiftMinutes: 60,
	},
	{
		Name:         "new-zealand",
		Start:        Transition{Month: 9, Weekday: Sunday, DayMin: 24, DayMax: 30, Hour: 2},
		End:          Transition{Month: 4, Weekday: Sunday, DayMin: 1, DayMax: 7, Hour: 3},
		ShiftMinutes: 60,
	},
	{
		Name:         "chile",
		Start:        Transition{Month: 9, Weekday: Saturday, DayMin: 1, DayMax: 7, Hour: 24},
		End:          Transition{Month: 4, Weekday: Saturday, DayMin: 1, DayMax: 7, Hour: 24},
		ShiftMinutes: 60,
	},
	{
		Name:         "israel",
		Start:        Transition{Month: 3, Weekday: Friday, DayMin: 23, DayMax: 29, Hour: 2},
		End:          Transition{Month: 10, Weekday: Sunday, DayMin: 25, DayMax: 31, Hour: 2},
		ShiftMinutes: 60,
	},
	{
		Name:         "lord-howe",
		Start:        Transition{Month: 10, Weekday: Sunday, DayMin: 1, DayMax: 7, Hour: 2},
		End:          Transition{Month: 4, Weekday: Sunday, DayMin: 1, DayMax: 7, Hour: 2},
		ShiftMinutes: 30,
	},
	{
		Name:         "egypt",
		Start:        Transition{Month: 4, Weekday: Friday, DayMin: 24, DayMax: 30, Hour: 0},
		End:          Transition{Month: 10, Weekday: Thursday, DayMin: 25, DayMax: 31, Hour: 24},
		ShiftMinutes: 60,
	},
}

// Prepare computes the transition days for year. It must run before any
// evaluation in a new year.
func (r *DSTRule) Prepare(year int) error {
	r.prepared = false
	r.Year = uint16(year)

	sd, ok := r.Start.day(year)
	if !ok {
		return ErrRuleNotCovered
	}
	ed, ok := r.End.day(year)
	if !ok {
		return ErrRuleNotCovered
	}

	r.StartYearDay = DayOfYear(year, int(r.Start.Month), sd)
	r.EndYearDay = DayOfYear(year, int(r.End.Month), ed)
	r.prepared = true
	return nil
}

// Southern reports whether summer spans the new year
func (r *DSTRule) Southern() bool {
	return r.Start.Month > r.End.Month
}

// SummerAt reports whether summer time applies at w.
//
// Both edges are compared as minute-of-year instants on one time line:
// local standard time, or UTC for UTC-anchored rules. w is converted back
// from summer time when summer is set. Transitions at hour 24 become the
// first minute of the following day without touching the date.
func (r *DSTRule) SummerAt(w WallClock, stdOffsetMinutes int16, summer bool) (bool, error) {
	if !r.prepared || r.Year != w.Year {
		if err := r.Prepare(int(w.Year)); err != nil {
			return summer, err
		}
	}

	now := w.MinuteOfYear()
	if summer {
		now -= int32(r.ShiftMinutes)
	}
	if r.UTC {
		now -= int32(stdOffsetMinutes)
	}

	start := (int32(r.StartYearDay)-1)*24*60 + int32(r.Start.Hour)*60
	end := (int32(r.EndYearDay)-1)*24*60 + int32(r.End.Hour)*60
	if !r.UTC {
		// End hour is stated in summer time
		end -= int32(r.ShiftMinutes)
	}

	if r.Southern() {
		return now >= start || now < end, nil
	}
	return now >= start && now < end, nil
}

// DSTState is the daylight saving part of the evaluator: the selected rule,
// the current season and the offset from UTC in effect.
type DSTState struct {
	Region uint8
	Summer bool
	// Offset is the current UTC offset in minutes, including the summer
	// shift while Summer is set.
	Offset int16

	rule DSTRule
}

// SetRegion selects a rule. Unknown regions disable DST.
func (d *DSTState) SetRegion(region uint8) {
	if int(region) >= len(Rules) {
		region = RegionNone
	}
	d.Region = region
	d.rule = Rules[region]
}

// StandardOffset returns the UTC offset without the summer shift
func (d *DSTState) StandardOffset() int16 {
	if d.Summer {
		return d.Offset - d.rule.ShiftMinutes
	}
	return d.Offset
}

// Rule returns the selected rule with its derived fields
func (d *DSTState) Rule() DSTRule {
	return d.rule
}

// UpdateDSTStatus evaluates the rule at w. On a season edge it flips Summer,
// adjusts Offset by the shift and moves w by the same amount. It reports
// whether an edge was applied. Calling it again at the resulting time
// changes nothing.
func (d *DSTState) UpdateDSTStatus(w *WallClock) (bool, error) {
	if d.Region == RegionNone || d.rule.ShiftMinutes == 0 {
		return false, nil
	}

	summer, err := d.rule.SummerAt(*w, d.StandardOffset(), d.Summer)
	if err != nil {
		return false, err
	}
	if summer == d.Summer {
		return false, nil
	}

	shift := d.rule.ShiftMinutes
	if !summer {
		shift = -shift
	}
	d.Summer = summer
	d.Offset += shift
	w.AddMinutes(int(shift))
	return true, nil
}

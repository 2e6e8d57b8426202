// Package clock owns the wall clock and everything evaluated once per
// second: alarms, chimes, calendar events, the countdown timer and daylight
// saving transitions.
package clock

import "time"

// Weekday numbering used throughout the clock (0 = Sunday)
const (
	Sunday uint8 = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

const (
	MinYear = 2000
	MaxYear = 2099
)

// WallClock is the local time shown on the display. Weekday and YearDay are
// derived from the date and are only ever set together with it.
type WallClock struct {
	Hour    uint8
	Minute  uint8
	Second  uint8
	Day     uint8 // 1-31
	Month   uint8 // 1-12
	Year    uint16
	Weekday uint8  // 0 = Sunday
	YearDay uint16 // 1-366
}

// IsLeap applies the Gregorian leap year rule
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var monthDays = [13]uint8{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the length of month in year
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeap(year) {
		return 29
	}
	return int(monthDays[month])
}

// DayOfWeek returns 0 for Sunday through 6 for Saturday
func DayOfWeek(year, month, day int) uint8 {
	offsets := [12]int{0, 3, 2, 5, 0, 3, 5, 1, 4, 6, 2, 4}
	if month < 3 {
		year--
	}
	return uint8((year + year/4 - year/100 + year/400 + offsets[month-1] + day) % 7)
}

// DayOfYear returns 1 for January 1st
func DayOfYear(year, month, day int) uint16 {
	n := day
	for m := 1; m < month; m++ {
		n += DaysInMonth(year, m)
	}
	return uint16(n)
}

// ClampDay limits day to the length of the given month
func ClampDay(year, month, day int) int {
	if day < 1 {
		return 1
	}
	if n := DaysInMonth(year, month); day > n {
		return n
	}
	return day
}

// Date builds a WallClock at midnight of the given date
func Date(year, month, day int) WallClock {
	var w WallClock
	w.SetDate(year, month, day)
	return w
}

// SetDate replaces the date and recomputes the derived fields. The day is
// clamped to the month.
func (w *WallClock) SetDate(year, month, day int) {
	if month < 1 {
		month = 1
	} else if month > 12 {
		month = 12
	}
	day = ClampDay(year, month, day)

	w.Year = uint16(year)
	w.Month = uint8(month)
	w.Day = uint8(day)
	w.Weekday = DayOfWeek(year, month, day)
	w.YearDay = DayOfYear(year, month, day)
}

// Valid reports whether every field is in range and the derived fields agree
func (w WallClock) Valid() bool {
	if w.Hour > 23 || w.Minute > 59 || w.Second > 59 {
		return false
	}
	if w.Month < 1 || w.Month > 12 || w.Day < 1 || int(w.Day) > DaysInMonth(int(w.Year), int(w.Month)) {
		return false
	}
	y, m, d := int(w.Year), int(w.Month), int(w.Day)
	return w.Weekday == DayOfWeek(y, m, d) && w.YearDay == DayOfYear(y, m, d)
}

// Carry reports which fields rolled over during a Tick
type Carry uint8

const (
	CarryMinute Carry = 1 << iota
	CarryHour
	CarryDay
	CarryMonth
	CarryYear
)

// Tick advances one second with full calendar carry
func (w *WallClock) Tick() Carry {
	w.Second++
	if w.Second < 60 {
		return 0
	}
	w.Second = 0
	w.Minute++
	if w.Minute < 60 {
		return CarryMinute
	}
	w.Minute = 0
	w.Hour++
	if w.Hour < 24 {
		return CarryMinute | CarryHour
	}
	w.Hour = 0
	return CarryMinute | CarryHour | w.nextDay()
}

func (w *WallClock) nextDay() Carry {
	carry := CarryDay
	year, month, day := int(w.Year), int(w.Month), int(w.Day)+1
	if day > DaysInMonth(year, month) {
		day = 1
		month++
		carry |= CarryMonth
		if month > 12 {
			month = 1
			year++
			carry |= CarryYear
		}
	}

	// Date fields first, derived fields after; the published copy is
	// packed so readers never see the intermediate state.
	w.Year, w.Month, w.Day = uint16(year), uint8(month), uint8(day)
	w.Weekday = (w.Weekday + 1) % 7
	if carry&CarryYear != 0 {
		w.YearDay = 1
	} else {
		w.YearDay++
	}
	return carry
}

func (w *WallClock) prevDay() {
	year, month, day := int(w.Year), int(w.Month), int(w.Day)-1
	if day < 1 {
		month--
		if month < 1 {
			month = 12
			year--
		}
		day = DaysInMonth(year, month)
	}
	w.SetDate(year, month, day)
}

// AddMinutes moves the clock by n minutes (negative moves back), carrying
// into the date in either direction. Seconds are unchanged.
func (w *WallClock) AddMinutes(n int) {
	total := int(w.Hour)*60 + int(w.Minute) + n
	for total < 0 {
		total += 24 * 60
		w.prevDay()
	}
	for total >= 24*60 {
		total -= 24 * 60
		w.nextDay()
	}
	w.Hour = uint8(total / 60)
	w.Minute = uint8(total % 60)
}

// MinuteOfYear counts minutes since January 1st 00:00
func (w WallClock) MinuteOfYear() int32 {
	return (int32(w.YearDay)-1)*24*60 + int32(w.Hour)*60 + int32(w.Minute)
}

// Pack encodes the clock into one word so it can be published atomically
func (w WallClock) Pack() uint64 {
	return uint64(w.Second) |
		uint64(w.Minute)<<6 |
		uint64(w.Hour)<<12 |
		uint64(w.Day)<<17 |
		uint64(w.Month)<<22 |
		uint64(w.Weekday)<<26 |
		uint64(w.YearDay)<<29 |
		uint64(w.Year)<<38
}

// Unpack reverses Pack
func Unpack(v uint64) WallClock {
	return WallClock{
		Second:  uint8(v & 0x3F),
		Minute:  uint8(v >> 6 & 0x3F),
		Hour:    uint8(v >> 12 & 0x1F),
		Day:     uint8(v >> 17 & 0x1F),
		Month:   uint8(v >> 22 & 0x0F),
		Weekday: uint8(v >> 26 & 0x07),
		YearDay: uint16(v >> 29 & 0x1FF),
		Year:    uint16(v >> 38 & 0xFFFF),
	}
}

// FromTime converts a time.Time in its own location
func FromTime(t time.Time) WallClock {
	w := WallClock{
		Hour:   uint8(t.Hour()),
		Minute: uint8(t.Minute()),
		Second: uint8(t.Second()),
	}
	w.SetDate(t.Year(), int(t.Month()), t.Day())
	return w
}

// Time converts to a time.Time in loc
func (w WallClock) Time(loc *time.Location) time.Time {
	return time.Date(int(w.Year), time.Month(w.Month), int(w.Day),
		int(w.Hour), int(w.Minute), int(w.Second), 0, loc)
}

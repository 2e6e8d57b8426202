package clock

import (
	"testing"
	"time"
)

func TestDayRollover(t *testing.T) {
	testCases := []struct {
		from, to [3]int
	}{
		{[3]int{2024, 2, 28}, [3]int{2024, 2, 29}},
		{[3]int{2024, 2, 29}, [3]int{2024, 3, 1}},
		{[3]int{2025, 2, 28}, [3]int{2025, 3, 1}},
		{[3]int{2000, 2, 28}, [3]int{2000, 2, 29}},
		{[3]int{2026, 4, 30}, [3]int{2026, 5, 1}},
		{[3]int{2025, 12, 31}, [3]int{2026, 1, 1}},
		{[3]int{2024, 12, 31}, [3]int{2025, 1, 1}},
		{[3]int{2026, 10, 16}, [3]int{2026, 10, 17}},
	}

	for _, tc := range testCases {
		w := Date(tc.from[0], tc.from[1], tc.from[2])
		w.Hour, w.Minute, w.Second = 13, 45, 12
		weekday := w.Weekday

		for i := 0; i < 86400; i++ {
			w.Tick()
		}

		if int(w.Year) != tc.to[0] || int(w.Month) != tc.to[1] || int(w.Day) != tc.to[2] {
			t.Errorf("%v + 86400s: Expected %v, got %d-%d-%d", tc.from, tc.to, w.Year, w.Month, w.Day)
		}
		if w.Hour != 13 || w.Minute != 45 || w.Second != 12 {
			t.Errorf("%v + 86400s: Expected 13:45:12, got %02d:%02d:%02d", tc.from, w.Hour, w.Minute, w.Second)
		}
		if w.Weekday != (weekday+1)%7 {
			t.Errorf("%v + 86400s: Expected weekday %d, got %d", tc.from, (weekday+1)%7, w.Weekday)
		}
		if !w.Valid() {
			t.Errorf("%v + 86400s: derived fields out of step: %+v", tc.from, w)
		}
	}
}

func TestTickCarry(t *testing.T) {
	w := Date(2025, 12, 31)
	w.Hour, w.Minute, w.Second = 23, 59, 59

	carry := w.Tick()

	want := CarryMinute | CarryHour | CarryDay | CarryMonth | CarryYear
	if carry != want {
		t.Errorf("Expected carry %b, got %b", want, carry)
	}
	if w.YearDay != 1 || w.Year != 2026 {
		t.Errorf("Expected day 1 of 2026, got day %d of %d", w.YearDay, w.Year)
	}
}

func TestLeapRule(t *testing.T) {
	for year, leap := range map[int]bool{2000: true, 2024: true, 2025: false, 2100: false, 2400: true} {
		if IsLeap(year) != leap {
			t.Errorf("IsLeap(%d): Expected %v", year, leap)
		}
	}
}

func TestDerivedFieldsMatchTimePackage(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 3*366; d++ {
		tm := start.AddDate(0, 0, d)
		w := FromTime(tm)
		if w.Weekday != uint8(tm.Weekday()) {
			t.Fatalf("%s: Expected weekday %d, got %d", tm.Format("2006-01-02"), tm.Weekday(), w.Weekday)
		}
		if int(w.YearDay) != tm.YearDay() {
			t.Fatalf("%s: Expected year day %d, got %d", tm.Format("2006-01-02"), tm.YearDay(), w.YearDay)
		}
	}
}

func TestSetDateClamps(t *testing.T) {
	var w WallClock
	w.SetDate(2026, 2, 31)
	if w.Day != 28 {
		t.Errorf("Expected Feb 31 2026 to clamp to 28, got %d", w.Day)
	}
	w.SetDate(2024, 2, 31)
	if w.Day != 29 {
		t.Errorf("Expected Feb 31 2024 to clamp to 29, got %d", w.Day)
	}
}

func TestAddMinutes(t *testing.T) {
	w := Date(2026, 1, 1)
	w.Hour, w.Minute = 0, 30

	w.AddMinutes(-60)
	if w.Year != 2025 || w.Month != 12 || w.Day != 31 || w.Hour != 23 || w.Minute != 30 {
		t.Errorf("Expected 2025-12-31 23:30, got %+v", w)
	}
	if !w.Valid() {
		t.Errorf("Derived fields wrong after moving back: %+v", w)
	}

	w.AddMinutes(90)
	if w.Year != 2026 || w.Day != 1 || w.Hour != 1 || w.Minute != 0 {
		t.Errorf("Expected 2026-01-01 01:00, got %+v", w)
	}
}

func TestPack(t *testing.T) {
	w := Date(2099, 12, 31)
	w.Hour, w.Minute, w.Second = 23, 59, 58

	if got := Unpack(w.Pack()); got != w {
		t.Errorf("Expected %+v, got %+v", w, got)
	}
}

package clock

import "testing"

func at(year, month, day, hour, minute, second int) WallClock {
	w := Date(year, month, day)
	w.Hour, w.Minute, w.Second = uint8(hour), uint8(minute), uint8(second)
	return w
}

func TestDayMask(t *testing.T) {
	if MaskOf(Sunday) != 1<<1 || MaskOf(Saturday) != 1<<7 {
		t.Errorf("Expected Sunday bit 1 and Saturday bit 7, got %b and %b", MaskOf(Sunday), MaskOf(Saturday))
	}
	if !Weekend.Has(Sunday) || Weekend.Has(Monday) {
		t.Error("Weekend mask is wrong")
	}
}

func TestAlarmFiresOnSelectedDays(t *testing.T) {
	alarm := AlarmSlot{
		Enabled: true,
		Hour:    7,
		Minute:  30,
		Days:    DayMonday | DayWednesday | DayFriday,
	}

	testCases := []struct {
		name string
		now  WallClock
		want bool
	}{
		{"monday 07:30:00", at(2026, 1, 5, 7, 30, 0), true},
		{"wednesday 07:30:00", at(2026, 1, 7, 7, 30, 0), true},
		{"friday 07:30:00", at(2026, 1, 9, 7, 30, 0), true},
		{"tuesday 07:30:00", at(2026, 1, 6, 7, 30, 0), false},
		{"monday 07:31:00", at(2026, 1, 5, 7, 31, 0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEvaluator(Settings{Alarms: [AlarmSlots]AlarmSlot{alarm}})

			before := tc.now
			before.AddMinutes(-1)
			before.Second = 59
			e.SetTime(before)

			r := e.Tick()
			if got := r.Started&1 != 0; got != tc.want {
				t.Errorf("Expected fired=%v, got %v (report %+v)", tc.want, got, r)
			}
		})
	}
}

func TestDisabledAlarmDoesNotFire(t *testing.T) {
	alarm := AlarmSlot{Hour: 7, Minute: 30, Days: Everyday}
	if alarm.Matches(at(2026, 1, 5, 7, 30, 0)) {
		t.Error("Disabled alarm matched")
	}
}

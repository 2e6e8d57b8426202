package display

import (
	"picoclock/clock"
	"picoclock/core"
)

var (
	dayNames   = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	monthNames = [13]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// FormatTime renders HH:MM, in 12 hour form when h12 is set. The colon is
// dropped on the off phase of the blink.
func FormatTime(w clock.WallClock, h12, colon bool) string {
	hour := int(w.Hour)
	if h12 {
		hour %= 12
		if hour == 0 {
			hour = 12
		}
	}
	sep := ":"
	if !colon {
		sep = " "
	}
	return core.Pad2(hour) + sep + core.Pad2(int(w.Minute))
}

// FormatDate renders "Fri 16 Oct 2026"
func FormatDate(w clock.WallClock) string {
	return dayNames[w.Weekday%7] + " " + core.Itoa(int(w.Day)) + " " +
		monthNames[w.Month%13] + " " + core.Itoa(int(w.Year))
}

// FormatTemperature renders tenths of a degree and humidity, e.g. "21.5C 48%"
func FormatTemperature(tempC10 int16, humidity10 uint16) string {
	sign := ""
	t := int(tempC10)
	if t < 0 {
		sign = "-"
		t = -t
	}
	s := sign + core.Itoa(t/10) + "." + core.Itoa(t%10) + "C"
	if humidity10 > 0 {
		s += " " + core.Itoa(int(humidity10+5)/10) + "%"
	}
	return s
}

// FormatField renders a setup field, blanking the value on the off phase
func FormatField(label string, value int, visible bool) string {
	if !visible {
		return label
	}
	return label + " " + core.Itoa(value)
}

var dayLetters = [7]byte{'S', 'M', 'T', 'W', 'T', 'F', 'S'}

// FormatDays renders a day mask Sunday first, "-" for unselected days, e.g.
// "-M-W-F-". The day under the cursor is blanked on the off phase.
func FormatDays(mask clock.DayMask, cursor int, visible bool) string {
	var out [7]byte
	for d := range out {
		out[d] = '-'
		if mask.Has(uint8(d)) {
			out[d] = dayLetters[d]
		}
		if d == cursor && !visible {
			out[d] = ' '
		}
	}
	return string(out[:])
}

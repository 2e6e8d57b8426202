package sensor

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

var ErrRTCInvalid = errors.New("rtc lost power")

type rtcDevice interface {
	ReadTime() (time.Time, error)
	SetTime(time.Time) error
	IsTimeValid() bool
	ReadTemperature() (int32, error)
}

// RTC is the battery-backed DS3231. It keeps UTC.
type RTC struct {
	dev rtcDevice
}

// NewRTC configures a DS3231 on bus
func NewRTC(bus drivers.I2C) *RTC {
	d := ds3231.New(bus)
	d.Configure()
	return &RTC{dev: &d}
}

// Now returns the stored UTC time, or ErrRTCInvalid if the oscillator
// stopped since it was last set
func (r *RTC) Now() (time.Time, error) {
	if !r.dev.IsTimeValid() {
		return time.Time{}, ErrRTCInvalid
	}
	return r.dev.ReadTime()
}

// Set stores t as UTC
func (r *RTC) Set(t time.Time) error {
	return r.dev.SetTime(t.UTC())
}

// ReadTemperatureHumidity reports the RTC's die temperature, which is the
// fallback when no environment sensor is fitted
func (r *RTC) ReadTemperatureHumidity() (Reading, error) {
	milliC, err := r.dev.ReadTemperature()
	if err != nil {
		return Reading{}, err
	}
	return Reading{TempC10: int16(milliC / 100)}, nil
}

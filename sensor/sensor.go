// Package sensor reads the optional environment sensors and the battery
// backed real time clock. Reads that must bit-bang a pin run on core 1 and
// are reached through a Worker.
package sensor

import (
	"errors"
	"fmt"

	"picoclock/core"
)

// SourceSensor tags sensor failures in the debug event ring
const SourceSensor = 4

// DefaultAttempts is how many times ReadWithRetry tries a sensor
const DefaultAttempts = 3

var ErrReadFailed = errors.New("sensor read failed")

// Reading is one measurement. Fields a sensor does not provide are zero.
type Reading struct {
	TempC10    int16  // tenths of a degree Celsius
	Humidity10 uint16 // tenths of a percent
	PressurePa uint32
}

// Sensor is anything that can measure temperature and humidity
type Sensor interface {
	ReadTemperatureHumidity() (Reading, error)
}

// ReadWithRetry tries s up to attempts times. The last error is returned
// wrapped in ErrReadFailed and recorded in the event ring; the caller keeps
// showing its previous value.
func ReadWithRetry(s Sensor, attempts int) (Reading, error) {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		var r Reading
		r, err = s.ReadTemperatureHumidity()
		if err == nil {
			return r, nil
		}
	}
	core.RecordEvent(core.EvtSensorFail, SourceSensor, core.GetTime(), uint32(attempts), 0)
	return Reading{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
}

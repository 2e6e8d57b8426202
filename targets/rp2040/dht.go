//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/dht"

	"picoclock/sensor"
)

// DHT22 is read on core 1: the single-wire protocol is timed by busy
// waiting with interrupts off for about 5 ms.
type DHT22 struct {
	dev dht.Device
}

// newDHT22 reports false when nothing answers on pin
func newDHT22(pin machine.Pin) (*DHT22, bool) {
	d := &DHT22{dev: dht.New(pin, dht.DHT22)}
	if err := d.dev.ReadMeasurements(); err != nil {
		return nil, false
	}
	return d, true
}

func (d *DHT22) ReadTemperatureHumidity() (sensor.Reading, error) {
	if err := d.dev.ReadMeasurements(); err != nil {
		return sensor.Reading{}, err
	}
	temp, hum, err := d.dev.Measurements()
	if err != nil {
		return sensor.Reading{}, err
	}
	return sensor.Reading{TempC10: temp, Humidity10: hum}, nil
}

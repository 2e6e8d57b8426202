package sensor

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/aht20"
	"tinygo.org/x/drivers/bme280"
)

type aht20Device interface {
	Read() error
	DeciCelsius() int32
	DeciRelHumidity() int32
}

// AHT20 reads an AHT20 temperature/humidity sensor
type AHT20 struct {
	dev aht20Device
}

// NewAHT20 configures an AHT20 on bus
func NewAHT20(bus drivers.I2C) *AHT20 {
	d := aht20.New(bus)
	d.Configure()
	return &AHT20{dev: &d}
}

func (s *AHT20) ReadTemperatureHumidity() (Reading, error) {
	if err := s.dev.Read(); err != nil {
		return Reading{}, err
	}
	return Reading{
		TempC10:    int16(s.dev.DeciCelsius()),
		Humidity10: uint16(s.dev.DeciRelHumidity()),
	}, nil
}

type bme280Device interface {
	ReadTemperature() (int32, error)
	ReadHumidity() (int32, error)
	ReadPressure() (int32, error)
}

// BME280 reads a BME280 temperature/humidity/pressure sensor
type BME280 struct {
	dev bme280Device
}

// NewBME280 configures a BME280 on bus. It reports false if nothing
// answered at the sensor's address.
func NewBME280(bus drivers.I2C) (*BME280, bool) {
	d := bme280.New(bus)
	if !d.Connected() {
		return nil, false
	}
	d.Configure()
	return &BME280{dev: &d}, true
}

func (s *BME280) ReadTemperatureHumidity() (Reading, error) {
	milliC, err := s.dev.ReadTemperature()
	if err != nil {
		return Reading{}, err
	}
	hum, err := s.dev.ReadHumidity()
	if err != nil {
		return Reading{}, err
	}
	pressure, err := s.dev.ReadPressure()
	if err != nil {
		return Reading{}, err
	}
	return Reading{
		TempC10:    int16(milliC / 100),
		Humidity10: uint16(hum / 10),
		PressurePa: uint32(pressure / 1000),
	}, nil
}

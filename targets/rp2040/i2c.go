//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/aht20"

	"picoclock/core"
	"picoclock/sensor"
)

// i2cFrequency suits the DS3231, AHT20 and BME280 together
const i2cFrequency = 400 * machine.KHz

// initI2C configures I2C0 on the board's pins
func initI2C() *machine.I2C {
	bus := machine.I2C0
	err := bus.Configure(machine.I2CConfig{
		Frequency: i2cFrequency,
		SDA:       i2cSDA,
		SCL:       i2cSCL,
	})
	if err != nil {
		core.DebugPrintln("[I2C] " + err.Error())
		return nil
	}
	return bus
}

// present reports whether anything acknowledges at addr
func present(bus *machine.I2C, addr uint16) bool {
	var b [1]byte
	return bus.Tx(addr, nil, b[:]) == nil
}

// findSensor picks the environment sensor: a BME280, then an AHT20, then a
// DHT22 bit-banged on core 1, then the RTC or chip die temperature.
func findSensor(bus *machine.I2C, rtc *sensor.RTC) sensor.Sensor {
	if bus != nil {
		if s, ok := sensor.NewBME280(bus); ok {
			core.DebugPrintln("[SENSOR] bme280")
			return s
		}
		if present(bus, aht20.Address) {
			core.DebugPrintln("[SENSOR] aht20")
			return sensor.NewAHT20(bus)
		}
	}
	if d, ok := newDHT22(dhtPin); ok {
		core.DebugPrintln("[SENSOR] dht22")
		return d
	}
	if rtc != nil {
		core.DebugPrintln("[SENSOR] ds3231 die")
		return rtc
	}
	core.DebugPrintln("[SENSOR] rp2040 die")
	return DieSensor{}
}

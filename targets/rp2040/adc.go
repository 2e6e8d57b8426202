//go:build rp2040

package main

import (
	"device/rp"
	"machine"

	"picoclock/core"
	"picoclock/sensor"
)

// tempChannel is the RP2040's internal temperature sensor
const tempChannel core.ADCChannelID = 4

// RPADCDriver implements core.ADCDriver with machine.ADC. Readings are
// scaled to 16 bits by TinyGo.
type RPADCDriver struct {
	channels [4]machine.ADC
	ready    [4]bool
}

// NewRPADCDriver initialises the ADC block
func NewRPADCDriver() *RPADCDriver {
	machine.InitADC()
	return &RPADCDriver{}
}

func (d *RPADCDriver) ConfigureChannel(ch core.ADCChannelID) error {
	if ch == tempChannel {
		return nil
	}
	if ch > 3 {
		return errBadPin
	}
	pins := [4]machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2, machine.ADC3}
	d.channels[ch] = machine.ADC{Pin: pins[ch]}
	if err := d.channels[ch].Configure(machine.ADCConfig{}); err != nil {
		return err
	}
	d.ready[ch] = true
	return nil
}

func (d *RPADCDriver) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	if ch == tempChannel {
		return core.ADCValue(rawInternalTemp() << 4), nil
	}
	if ch > 3 {
		return 0, errBadPin
	}
	if !d.ready[ch] {
		if err := d.ConfigureChannel(ch); err != nil {
			return 0, err
		}
	}
	return core.ADCValue(d.channels[ch].Get()), nil
}

// rawInternalTemp returns the 12-bit reading of the temperature sensor
func rawInternalTemp() uint16 {
	if rp.ADC.CS.Get()&rp.ADC_CS_EN == 0 {
		machine.InitADC()
	}
	rp.ADC.CS.SetBits(rp.ADC_CS_TS_EN)
	rp.ADC.CS.ReplaceBits(uint32(tempChannel)<<rp.ADC_CS_AINSEL_Pos, rp.ADC_CS_AINSEL_Msk, 0)
	rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)
	for !rp.ADC.CS.HasBits(rp.ADC_CS_READY) {
	}
	return uint16(rp.ADC.RESULT.Get())
}

// DieSensor reports the chip temperature. It reads a few degrees above
// room temperature and is the last resort when nothing else is fitted.
type DieSensor struct{}

// ReadTemperatureHumidity converts with the datasheet formula
// T = 27 - (V - 0.706) / 0.001721, in tenths of a degree
func (DieSensor) ReadTemperatureHumidity() (sensor.Reading, error) {
	raw := int32(rawInternalTemp())
	microvolts := raw * 3300000 / 4095
	tempC10 := 270 - (microvolts-706000)*10/1721
	return sensor.Reading{TempC10: int16(tempC10)}, nil
}

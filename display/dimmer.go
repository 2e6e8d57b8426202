package display

import "picoclock/core"

// Dimmer turns ambient light readings into a display brightness. Samples
// are smoothed with a running average so a passing shadow does not flicker
// the display.
type Dimmer struct {
	channel core.ADCChannelID
	avg     uint32
	primed  bool

	// NightLevel caps brightness while the night window is active
	NightLevel uint8
}

// NewDimmer samples the given ADC channel
func NewDimmer(ch core.ADCChannelID) *Dimmer {
	return &Dimmer{channel: ch, NightLevel: 1}
}

// Sample takes one reading; call it at a low rate from the one millisecond
// callback
func (d *Dimmer) Sample() error {
	v, err := core.MustADC().ReadRaw(d.channel)
	if err != nil {
		return err
	}
	d.Add(uint16(v))
	return nil
}

// Add feeds a raw 16 bit reading
func (d *Dimmer) Add(v uint16) {
	if !d.primed {
		d.avg = uint32(v) << 4
		d.primed = true
		return
	}
	d.avg = d.avg - d.avg>>4 + uint32(v)
}

// Level maps the average reading onto 1..MaxBrightness
func (d *Dimmer) Level(night bool) uint8 {
	level := uint8((d.avg>>4)*MaxBrightness/0xFFFF) + 1
	if level > MaxBrightness {
		level = MaxBrightness
	}
	if night && level > d.NightLevel {
		level = d.NightLevel
	}
	return level
}

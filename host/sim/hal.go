package sim

import (
	"math/rand"
	"sync/atomic"
	"time"

	"picoclock/core"
	"picoclock/input"
	"picoclock/sensor"
)

// Pin assignment inside the simulator
const (
	PinMode core.GPIOPin = iota
	PinUp
	PinDown
	PinBeeper
	numPins
)

const (
	PinTone     core.PWMPin       = 0
	LightSensor core.ADCChannelID = 0
)

var buttonPins = [input.NumButtons]core.GPIOPin{PinMode, PinUp, PinDown}

// GPIO is the simulated pin bank. Buttons are held low until their release
// tick; the beeper pin level is published for the web view.
type GPIO struct {
	releaseAt [numPins]uint32
	held      [numPins]bool
	external  [numPins]bool
	level     [numPins]atomic.Bool
}

func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error      { return nil }
func (g *GPIO) ConfigureInputPullUp(pin core.GPIOPin) error { return nil }

func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	if pin < numPins {
		g.level[pin].Store(value)
	}
	return nil
}

// ReadPin returns the active-low button level
func (g *GPIO) ReadPin(pin core.GPIOPin) bool {
	if pin >= numPins {
		return true
	}
	return !(g.held[pin] || g.external[pin])
}

// press holds pin until the timer reaches until
func (g *GPIO) press(pin core.GPIOPin, until uint32) {
	g.held[pin] = true
	g.releaseAt[pin] = until
}

// update releases expired presses
func (g *GPIO) update(now uint32) {
	for pin := range g.held {
		if g.held[pin] && int32(now-g.releaseAt[pin]) >= 0 {
			g.held[pin] = false
		}
	}
}

// Level reports an output pin
func (g *GPIO) Level(pin core.GPIOPin) bool {
	return g.level[pin].Load()
}

// PWM records the tone frequency
type PWM struct {
	hz atomic.Uint32
}

func (p *PWM) ConfigureTone(pin core.PWMPin) error               { return nil }
func (p *PWM) SetDutyCycle(pin core.PWMPin, value uint16) error { return nil }

func (p *PWM) SetFrequency(pin core.PWMPin, hz uint32) error {
	p.hz.Store(hz)
	return nil
}

// Frequency returns the tone currently playing, 0 when silent
func (p *PWM) Frequency() uint32 {
	return p.hz.Load()
}

// ADC returns a settable ambient light level
type ADC struct {
	value atomic.Uint32
}

func (a *ADC) ConfigureChannel(ch core.ADCChannelID) error { return nil }

func (a *ADC) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	return core.ADCValue(a.value.Load()), nil
}

// SetLight sets the raw light reading
func (a *ADC) SetLight(v uint16) {
	a.value.Store(uint32(v))
}

// Rows is the simulated LED driver; the web view reads the matrix instead
type Rows struct {
	level atomic.Uint32
}

func (r *Rows) WriteRow(row uint8, bits uint32) {}

func (r *Rows) SetBrightness(level uint8) {
	r.level.Store(uint32(level))
}

// Climate is a simulated temperature/humidity sensor with a little noise
type Climate struct {
	TempC10    int16
	Humidity10 uint16
	rng        *rand.Rand
}

// NewClimate creates a sensor around the given readings
func NewClimate(tempC float64, humidity float64) *Climate {
	return &Climate{
		TempC10:    int16(tempC * 10),
		Humidity10: uint16(humidity * 10),
		rng:        rand.New(rand.NewSource(1)),
	}
}

func (c *Climate) ReadTemperatureHumidity() (sensor.Reading, error) {
	return sensor.Reading{
		TempC10:    c.TempC10 + int16(c.rng.Intn(3)-1),
		Humidity10: c.Humidity10,
	}, nil
}

// HostRTC is a battery clock that follows the host clock. Set keeps the
// difference, the way a DS3231 keeps its own drift.
type HostRTC struct {
	offset atomic.Int64
}

func (r *HostRTC) Now() (time.Time, error) {
	return time.Now().Add(time.Duration(r.offset.Load())).UTC(), nil
}

func (r *HostRTC) Set(t time.Time) error {
	r.offset.Store(int64(time.Until(t)))
	return nil
}

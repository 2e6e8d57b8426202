package sound

import "picoclock/core"

// buzzerFailed records a failed drive; value1 is the pin, value2 the
// requested frequency (1 for an active buzzer turned on)
func buzzerFailed(kind Kind, pin, hz uint32) {
	core.RecordEvent(core.EvtBuzzerFail, uint8(kind), core.GetTime(), pin, hz)
}

// PinBuzzer drives an active buzzer from a GPIO pin
type PinBuzzer struct {
	Pin core.GPIOPin
}

func (b PinBuzzer) On(uint16) {
	if err := core.MustGPIO().SetPin(b.Pin, true); err != nil {
		buzzerFailed(Simple, uint32(b.Pin), 1)
	}
}

func (b PinBuzzer) Off() {
	if err := core.MustGPIO().SetPin(b.Pin, false); err != nil {
		buzzerFailed(Simple, uint32(b.Pin), 0)
	}
}

// ToneBuzzer drives a passive buzzer with a PWM square wave
type ToneBuzzer struct {
	Pin core.PWMPin
}

func (b ToneBuzzer) On(hz uint16) {
	if err := core.MustPWM().SetFrequency(b.Pin, uint32(hz)); err != nil {
		buzzerFailed(Tone, uint32(b.Pin), uint32(hz))
	}
}

func (b ToneBuzzer) Off() {
	if err := core.MustPWM().SetFrequency(b.Pin, 0); err != nil {
		buzzerFailed(Tone, uint32(b.Pin), 0)
	}
}

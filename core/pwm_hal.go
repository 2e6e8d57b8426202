package core

// PWMPin identifies a hardware pin capable of PWM output
type PWMPin uint32

// PWMDriver drives the tone buzzer. Frequency changes happen from the
// 50 ms callback, so implementations must not block.
type PWMDriver interface {
	// ConfigureTone prepares the pin for square-wave output, initially silent
	ConfigureTone(pin PWMPin) error

	// SetFrequency starts a 50% duty square wave at hz; 0 silences the pin
	SetFrequency(pin PWMPin, hz uint32) error

	// SetDutyCycle sets the duty cycle in 1/65535 units, used for volume
	SetDutyCycle(pin PWMPin, value uint16) error
}

var pwmDriver PWMDriver

// SetPWMDriver is called by target-specific code to register its driver.
func SetPWMDriver(d PWMDriver) {
	pwmDriver = d
}

// MustPWM returns the configured driver or panics if missing.
func MustPWM() PWMDriver {
	if pwmDriver == nil {
		panic("PWM driver not configured")
	}
	return pwmDriver
}

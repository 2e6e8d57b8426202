//go:build rp2040

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/ds3231"

	"picoclock/core"
	"picoclock/display"
	"picoclock/firmware"
	"picoclock/sensor"
	"picoclock/sound"
	"picoclock/targets/pio"
)

var (
	fw      *firmware.Firmware
	console *firmware.Console

	// Debug counters
	panics       uint32
	writeFailure uint32
)

func main() {
	// Clear any watchdog state left from before the reset
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	InitUSB()
	InitDebugUART()
	core.TimerInit()

	gpio := NewRPGPIODriver()
	core.SetGPIODriver(gpio)
	core.SetPWMDriver(NewRP2040PWMDriver())
	core.SetADCDriver(NewRPADCDriver())

	for _, pin := range buttonPins {
		_ = gpio.ConfigureInputPullUp(pin)
	}
	_ = gpio.ConfigureOutput(beeperPin)
	if err := core.MustPWM().ConfigureTone(tonePin); err != nil {
		core.DebugPrintln("[TONE] " + err.Error())
	}
	_ = core.MustADC().ConfigureChannel(lightChannel)

	hw := firmware.Hardware{
		Buttons: buttonPins,
		Beeper:  sound.PinBuzzer{Pin: beeperPin},
		Tone:    sound.ToneBuzzer{Pin: tonePin},
		Store:   NewFlashStore(),
		Light:   display.NewDimmer(lightChannel),
		Sensors: sensor.NewChannel(),
	}

	rows, err := pio.NewRowShifter(matrixPins)
	if err != nil {
		core.DebugPrintln("[MATRIX] " + err.Error())
		hw.Rows = blankRows{}
	} else {
		hw.Rows = rows
	}

	var rtc *sensor.RTC
	bus := initI2C()
	if bus != nil && present(bus, ds3231.Address) {
		rtc = sensor.NewRTC(bus)
		hw.RTC = rtc
	}
	worker := sensor.NewWorker(hw.Sensors, findSensor(bus, rtc))

	fw = firmware.New(hw)
	console = fw.NewConsole()

	// Sensor reads run in their own goroutine, which the multicore
	// scheduler places on core 1
	go sensorLoop(worker)
	go usbReaderLoop()

	UpdateSystemTime()
	fw.Start(core.GetTime())

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
				}
			}()

			UpdateSystemTime()
			fw.Dispatch(core.GetTime())
			fw.Poll()
			if err := console.Process(usbWriter{}); err != nil {
				writeFailure++
			}
		}()

		// Yield to the reader goroutine
		time.Sleep(10 * time.Microsecond)
	}
}

// sensorLoop serves the cross-core sensor channel
func sensorLoop(w *sensor.Worker) {
	for {
		if !w.Poll() {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// usbReaderLoop feeds console input
func usbReaderLoop() {
	defer func() {
		if r := recover(); r != nil {
			panics++
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	var buf [64]byte
	for {
		n := 0
		for n < len(buf) && USBAvailable() > 0 {
			b, err := USBRead()
			if err != nil {
				break
			}
			buf[n] = b
			n++
		}
		if n > 0 {
			console.Feed(buf[:n])
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// usbWriter adapts the USB console to io.Writer
type usbWriter struct{}

func (usbWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := USBWriteBytes(p[written:])
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, errUSBStalled
		}
		written += n
	}
	return written, nil
}

// blankRows keeps the firmware running when the PIO could not be claimed
type blankRows struct{}

func (blankRows) WriteRow(row uint8, bits uint32) {}
func (blankRows) SetBrightness(level uint8)       {}

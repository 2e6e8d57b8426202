package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"picoclock/core"
	"picoclock/firmware"
	"picoclock/host/device"
	"picoclock/host/serial"
	"picoclock/host/timesync"
)

var (
	devicePath = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud       = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	chronyAddr = flag.String("chrony", timesync.DefaultAddress, "chronyd command address for sync; empty trusts the system clock")
	maxCorr    = flag.Duration("max-correction", timesync.DefaultMaxCorrection, "Largest pending chrony correction accepted by sync")
	verbose    = flag.Bool("verbose", false, "Print the dictionary after connecting")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: clock-host [flags] command [args]\n\nCommands:\n")
	fmt.Fprintln(os.Stderr, "  sync                          set the clock from the host's synchronised time")
	fmt.Fprintln(os.Stderr, "  time                          print the clock's time")
	fmt.Fprintln(os.Stderr, "  alarm SLOT                    print one alarm")
	fmt.Fprintln(os.Stderr, "  set-alarm SLOT HH:MM DAYS SND enable an alarm (DAYS: everyday, weekdays, weekend or a mask)")
	fmt.Fprintln(os.Stderr, "  disable-alarm SLOT            disable an alarm")
	fmt.Fprintln(os.Stderr, "  status                        print ringing, pause and sensor state")
	fmt.Fprintln(os.Stderr, "  pause HOURS                   suppress alarms; 0 cancels")
	fmt.Fprintln(os.Stderr, "  countdown SECONDS             start the kitchen timer")
	fmt.Fprintln(os.Stderr, "  save                          write the configuration to flash")
	fmt.Fprintln(os.Stderr, "  events                        dump the clock's debug event ring")
	fmt.Fprintln(os.Stderr, "  dict                          print the raw dictionary")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}

func run(cmd string, args []string) error {
	cfg := serial.DefaultConfig(*devicePath)
	cfg.Baud = *baud
	dev, err := device.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer dev.Close()

	if *verbose {
		printDictionary(dev.Dictionary())
	}

	switch cmd {
	case "sync":
		return syncTime(dev)
	case "time":
		return printTime(dev)
	case "alarm":
		slot, err := argUint(args, 0, 8)
		if err != nil {
			return err
		}
		a, err := dev.GetAlarm(uint8(slot))
		if err != nil {
			return err
		}
		printAlarm(a)
	case "set-alarm":
		return setAlarm(dev, args)
	case "disable-alarm":
		slot, err := argUint(args, 0, 8)
		if err != nil {
			return err
		}
		a, err := dev.GetAlarm(uint8(slot))
		if err != nil {
			return err
		}
		a.Enabled = false
		if a, err = dev.SetAlarm(a); err != nil {
			return err
		}
		printAlarm(a)
	case "status":
		st, err := dev.GetStatus()
		if err != nil {
			return err
		}
		fmt.Printf("ringing=%#x paused=%v pause_hours=%d countdown=%ds temp=%s humidity=%d.%d%% setup=%d\n",
			st.Ringing, st.Paused, st.PauseHours, st.Countdown, tenths(int(st.TempC10)),
			st.Humidity10/10, st.Humidity10%10, st.Setup)
	case "pause":
		hours, err := argUint(args, 0, 255)
		if err != nil {
			return err
		}
		return dev.PauseAlarms(uint8(hours))
	case "countdown":
		secs, err := argUint(args, 0, 99*60+59)
		if err != nil {
			return err
		}
		return dev.StartCountdown(uint16(secs))
	case "save":
		return dev.SaveConfig()
	case "events":
		events, err := dev.DebugEvents()
		if err != nil {
			return err
		}
		for _, ev := range events {
			fmt.Printf("%3d %-14s src=%d clock=%d v1=%d v2=%d\n",
				ev.Index, core.EventName(ev.Type), ev.Source, ev.Clock, ev.Value1, ev.Value2)
		}
	case "dict":
		fmt.Println(string(dev.DictionaryRaw()))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func syncTime(dev *device.Device) error {
	var src firmware.TimeSource = timesync.SystemSource{}
	if *chronyAddr != "" {
		cs := timesync.NewChronySource(*chronyAddr)
		cs.MaxCorrection = *maxCorr
		defer cs.Close()
		src = cs
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	now, err := src.Resync(ctx)
	if err != nil {
		return fmt.Errorf("time source: %w", err)
	}
	if err := dev.SetTime(now); err != nil {
		return err
	}
	if err := dev.SaveConfig(); err != nil {
		return err
	}
	return printTime(dev)
}

func printTime(dev *device.Device) error {
	t, err := dev.GetTime()
	if err != nil {
		return err
	}
	season := "standard"
	if t.Summer {
		season = "summer"
	}
	fmt.Printf("%s (UTC%+03d:%02d, %s time)\n", t.Local.Format("Mon 2006-01-02 15:04:05"),
		t.Offset/60, abs(t.Offset%60), season)
	return nil
}

func setAlarm(dev *device.Device, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("set-alarm needs SLOT HH:MM DAYS SOUND")
	}
	slot, err := argUint(args, 0, 8)
	if err != nil {
		return err
	}
	hh, mm, ok := strings.Cut(args[1], ":")
	if !ok {
		return fmt.Errorf("time %q: expected HH:MM", args[1])
	}
	hour, err := argUint([]string{hh}, 0, 23)
	if err != nil {
		return err
	}
	minute, err := argUint([]string{mm}, 0, 59)
	if err != nil {
		return err
	}
	days, err := parseDays(args[2])
	if err != nil {
		return err
	}
	snd, err := parseSound(dev.Dictionary(), args[3])
	if err != nil {
		return err
	}

	a, err := dev.SetAlarm(device.Alarm{
		Slot:    uint8(slot),
		Enabled: true,
		Hour:    uint8(hour),
		Minute:  uint8(minute),
		Days:    days,
		Sound:   snd,
	})
	if err != nil {
		return err
	}
	printAlarm(a)
	return nil
}

func parseDays(s string) (uint8, error) {
	switch s {
	case "everyday":
		return 0xFE, nil
	case "weekdays":
		return 0x7C, nil
	case "weekend":
		return 0x82, nil
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("days %q: %w", s, err)
	}
	return uint8(v) &^ 1, nil
}

func parseSound(dict *device.Dictionary, s string) (uint8, error) {
	if v, ok := dict.Enumerations["sound"][s]; ok {
		return uint8(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("sound %q: not a name or number", s)
	}
	return uint8(v), nil
}

func argUint(args []string, i int, max uint64) (uint64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	v, err := strconv.ParseUint(args[i], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("argument %q: %w", args[i], err)
	}
	if v > max {
		return 0, fmt.Errorf("argument %d out of range (max %d)", v, max)
	}
	return v, nil
}

var dayLetters = [7]string{"S", "M", "T", "W", "T", "F", "S"}

func printAlarm(a device.Alarm) {
	var days strings.Builder
	for d := 0; d < 7; d++ {
		if a.Days&(1<<(d+1)) != 0 {
			days.WriteString(dayLetters[d])
		} else {
			days.WriteString("-")
		}
	}
	state := "off"
	if a.Enabled {
		state = "on"
	}
	fmt.Printf("alarm %d: %02d:%02d %s sound=%d %s\n", a.Slot, a.Hour, a.Minute, days.String(), a.Sound, state)
}

func printDictionary(d *device.Dictionary) {
	fmt.Printf("Version: %s\n", d.Version)
	for k, v := range d.Config {
		fmt.Printf("  %s = %s\n", k, v)
	}
	fmt.Printf("Commands: %d, responses: %d\n", len(d.Commands), len(d.Responses))
}

func tenths(v int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%dC", sign, v/10, v%10)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

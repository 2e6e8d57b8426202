package device

import (
	"errors"
	"net"
	"testing"
	"time"

	"picoclock/core"
	"picoclock/firmware"
	"picoclock/protocol"
)

// connect serves a fresh firmware console on one end of a pipe and returns
// a device with its dictionary loaded on the other
func connect(t *testing.T) (*Device, *firmware.Firmware) {
	t.Helper()
	fw := firmware.New(firmware.Hardware{})
	con := fw.NewConsole()
	link, host := net.Pipe()

	go func() {
		buf := make([]byte, protocol.FrameMax)
		for {
			n, err := link.Read(buf)
			if err != nil {
				return
			}
			con.Feed(buf[:n])
			if err := con.Process(link); err != nil {
				return
			}
		}
	}()

	d := New(host)
	t.Cleanup(func() {
		d.Close()
		link.Close()
	})
	if err := d.RetrieveDictionary(); err != nil {
		t.Fatalf("RetrieveDictionary: %v", err)
	}
	return d, fw
}

func TestRetrieveDictionary(t *testing.T) {
	d, _ := connect(t)
	dict := d.Dictionary()

	if dict.Version != firmware.Version {
		t.Errorf("Expected version %q, got %q", firmware.Version, dict.Version)
	}
	if len(d.DictionaryRaw()) <= ChunkSize {
		t.Errorf("Expected a multi-chunk dictionary, got %d bytes", len(d.DictionaryRaw()))
	}
	for _, name := range []string{"identify", "get_time", "set_alarm", "debug_events"} {
		if _, ok := d.commands[name]; !ok {
			t.Errorf("Expected command %s", name)
		}
	}
	if d.commands["identify"] != identifyID || d.responses["identify_response"] != identifyResponseID {
		t.Error("Expected identify and identify_response at their fixed ids")
	}
	if dict.Enumerations["sound"]["beep"] != 0 {
		t.Errorf("Expected sound enumeration, got %v", dict.Enumerations["sound"])
	}
	if dict.Config["ALARM_SLOTS"] != "9" {
		t.Errorf("Expected ALARM_SLOTS 9, got %q", dict.Config["ALARM_SLOTS"])
	}
}

func TestTimeRoundTrip(t *testing.T) {
	d, _ := connect(t)
	want := time.Date(2026, 3, 1, 10, 15, 30, 0, time.UTC)

	if err := d.SetTime(want); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	got, err := d.GetTime()
	if err != nil {
		t.Fatalf("GetTime: %v", err)
	}
	if !got.Local.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got.Local)
	}
	if got.Weekday != int(want.Weekday()) {
		t.Errorf("Expected weekday %d, got %d", want.Weekday(), got.Weekday)
	}
}

func TestAlarmRoundTrip(t *testing.T) {
	d, fw := connect(t)

	set := Alarm{Slot: 4, Enabled: true, Hour: 6, Minute: 5, Days: 0x3E, Sound: 2}
	stored, err := d.SetAlarm(set)
	if err != nil {
		t.Fatalf("SetAlarm: %v", err)
	}
	if stored != set {
		t.Errorf("Expected %+v, got %+v", set, stored)
	}

	got, err := d.GetAlarm(4)
	if err != nil {
		t.Fatalf("GetAlarm: %v", err)
	}
	if got != set {
		t.Errorf("Expected %+v, got %+v", set, got)
	}
	if a := fw.Clock.Alarm(4); !a.Enabled || a.Hour != 6 {
		t.Errorf("Expected the firmware slot updated, got %+v", a)
	}
}

func TestSetAlarmRejectsBadHour(t *testing.T) {
	d, _ := connect(t)
	d.Timeout = 200 * time.Millisecond

	_, err := d.SetAlarm(Alarm{Slot: 0, Hour: 24})
	if !errors.Is(err, protocol.ErrTimeout) {
		t.Errorf("Expected no alarm reply, got %v", err)
	}
}

func TestPauseAndStatus(t *testing.T) {
	d, _ := connect(t)

	if err := d.PauseAlarms(3); err != nil {
		t.Fatalf("PauseAlarms: %v", err)
	}
	if err := d.StartCountdown(90); err != nil {
		t.Fatalf("StartCountdown: %v", err)
	}
	st, err := d.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !st.Paused || st.PauseHours != 3 {
		t.Errorf("Expected a 3 hour pause, got %+v", st)
	}
	if st.Countdown != 90 {
		t.Errorf("Expected countdown 90, got %d", st.Countdown)
	}
}

func TestUnknownCommand(t *testing.T) {
	d, _ := connect(t)
	if err := d.Send("reboot", nil); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}

	var empty Device
	if err := empty.Send("get_time", nil); !errors.Is(err, ErrNoDictionary) {
		t.Errorf("Expected ErrNoDictionary, got %v", err)
	}
}

func TestDebugEventsPages(t *testing.T) {
	d, _ := connect(t)

	core.ClearEvents()
	for i := 0; i < 11; i++ {
		core.RecordEvent(core.EvtQueueFull, 3, uint32(i), uint32(i), 0)
	}

	events, err := d.DebugEvents()
	if err != nil {
		t.Fatalf("DebugEvents: %v", err)
	}
	if len(events) != 11 {
		t.Fatalf("Expected 11 events, got %d", len(events))
	}
	for i, ev := range events {
		if ev.Index != uint8(i) || ev.Value1 != uint32(i) || ev.Type != core.EvtQueueFull {
			t.Errorf("Event %d: unexpected %+v", i, ev)
		}
	}
}

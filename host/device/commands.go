package device

import (
	"errors"
	"fmt"
	"time"

	"picoclock/protocol"
)

// DebugEventsPage matches the firmware's per-request limit
const DebugEventsPage = 8

// Time is the clock's wall time as reported by get_time
type Time struct {
	Local   time.Time // in a zone at Offset
	Weekday int
	Offset  int // minutes east of UTC, including any summer shift
	Summer  bool
}

// GetTime reads the wall clock
func (d *Device) GetTime() (Time, error) {
	payload, err := d.Call("get_time", nil, "time")
	if err != nil {
		return Time{}, err
	}

	var year, month, day, hour, minute, second, weekday uint32
	if err := protocol.DecodeArgs(&payload, &year, &month, &day, &hour, &minute, &second, &weekday); err != nil {
		return Time{}, fmt.Errorf("decode time: %w", err)
	}
	offset, err := protocol.DecodeVLQInt(&payload)
	if err != nil {
		return Time{}, fmt.Errorf("decode offset: %w", err)
	}
	summer, err := protocol.DecodeVLQUint(&payload)
	if err != nil {
		return Time{}, fmt.Errorf("decode summer: %w", err)
	}

	zone := time.FixedZone("clock", int(offset)*60)
	return Time{
		Local:   time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), int(second), 0, zone),
		Weekday: int(weekday),
		Offset:  int(offset),
		Summer:  summer != 0,
	}, nil
}

// SetTime sets the clock from a UTC instant; the clock applies its own
// offset and DST rule
func (d *Device) SetTime(t time.Time) error {
	return d.Send("set_time", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(t.Unix()))
	})
}

// Alarm is one alarm slot
type Alarm struct {
	Slot    uint8
	Enabled bool
	Hour    uint8
	Minute  uint8
	Days    uint8 // bit 1 = Sunday ... bit 7 = Saturday
	Sound   uint8
}

func decodeAlarm(payload []byte) (Alarm, error) {
	var slot, enabled, hour, minute, days, snd uint32
	if err := protocol.DecodeArgs(&payload, &slot, &enabled, &hour, &minute, &days, &snd); err != nil {
		return Alarm{}, fmt.Errorf("decode alarm: %w", err)
	}
	return Alarm{
		Slot:    uint8(slot),
		Enabled: enabled != 0,
		Hour:    uint8(hour),
		Minute:  uint8(minute),
		Days:    uint8(days),
		Sound:   uint8(snd),
	}, nil
}

// GetAlarm reads one slot
func (d *Device) GetAlarm(slot uint8) (Alarm, error) {
	payload, err := d.Call("get_alarm", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(slot))
	}, "alarm")
	if err != nil {
		return Alarm{}, err
	}
	return decodeAlarm(payload)
}

// SetAlarm writes one slot and returns it as the clock stored it
func (d *Device) SetAlarm(a Alarm) (Alarm, error) {
	var enabled uint32
	if a.Enabled {
		enabled = 1
	}
	payload, err := d.Call("set_alarm", func(out protocol.OutputBuffer) {
		protocol.EncodeArgs(out, uint32(a.Slot), enabled, uint32(a.Hour), uint32(a.Minute),
			uint32(a.Days), uint32(a.Sound))
	}, "alarm")
	if err != nil {
		return Alarm{}, err
	}
	return decodeAlarm(payload)
}

// Status is the get_status reply
type Status struct {
	Ringing    uint16
	Paused     bool
	PauseHours uint8
	Countdown  uint16
	TempC10    int16
	Humidity10 uint16
	Setup      uint8
}

// GetStatus reads the status summary
func (d *Device) GetStatus() (Status, error) {
	payload, err := d.Call("get_status", nil, "status")
	if err != nil {
		return Status{}, err
	}

	var ringing, paused, pauseHours, countdown, humidity, setup uint32
	if err := protocol.DecodeArgs(&payload, &ringing, &paused, &pauseHours, &countdown); err != nil {
		return Status{}, fmt.Errorf("decode status: %w", err)
	}
	temp, err := protocol.DecodeVLQInt(&payload)
	if err != nil {
		return Status{}, fmt.Errorf("decode temperature: %w", err)
	}
	if err := protocol.DecodeArgs(&payload, &humidity, &setup); err != nil {
		return Status{}, fmt.Errorf("decode status: %w", err)
	}

	return Status{
		Ringing:    uint16(ringing),
		Paused:     paused != 0,
		PauseHours: uint8(pauseHours),
		Countdown:  uint16(countdown),
		TempC10:    int16(temp),
		Humidity10: uint16(humidity),
		Setup:      uint8(setup),
	}, nil
}

// PauseAlarms suppresses alarms for hours; zero cancels
func (d *Device) PauseAlarms(hours uint8) error {
	return d.Send("pause_alarms", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(hours))
	})
}

// StartCountdown runs the kitchen timer
func (d *Device) StartCountdown(seconds uint16) error {
	return d.Send("start_countdown", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(seconds))
	})
}

// SaveConfig asks the clock to write its configuration to flash
func (d *Device) SaveConfig() error {
	return d.Send("save_config", nil)
}

// DebugEvent is one entry of the clock's event ring
type DebugEvent struct {
	Index  uint8
	Type   uint8
	Source uint8
	Clock  uint32
	Value1 uint32
	Value2 uint32
}

// DebugEvents pages through the clock's event ring
func (d *Device) DebugEvents() ([]DebugEvent, error) {
	id, ok := d.responses["debug_event"]
	if !ok {
		return nil, fmt.Errorf("debug_event: %w", ErrUnknownCommand)
	}

	var events []DebugEvent
	for start := 0; start < 256; start += DebugEventsPage {
		err := d.Send("debug_events", func(out protocol.OutputBuffer) {
			protocol.EncodeArgs(out, uint32(start), DebugEventsPage)
		})
		if err != nil {
			return events, err
		}

		// Replies precede the ACK, so they are already queued
		page := 0
		for page < DebugEventsPage {
			msg, err := d.transport.ReceiveResponse(50 * time.Millisecond)
			if errors.Is(err, protocol.ErrTimeout) {
				break
			}
			if err != nil {
				return events, err
			}
			if msg.CmdID != id {
				continue
			}
			payload := msg.Payload
			var idx, typ, src, clk, v1, v2 uint32
			if err := protocol.DecodeArgs(&payload, &idx, &typ, &src, &clk, &v1, &v2); err != nil {
				return events, fmt.Errorf("decode debug_event: %w", err)
			}
			events = append(events, DebugEvent{uint8(idx), uint8(typ), uint8(src), clk, v1, v2})
			page++
		}
		if page < DebugEventsPage {
			break
		}
	}
	return events, nil
}

package firmware

import (
	"errors"
	"time"

	"picoclock/clock"
	"picoclock/core"
	"picoclock/protocol"
	"picoclock/sound"
)

// Console limits
const (
	IdentifyChunk  = 40 // dictionary bytes per identify_response
	DebugEventsMax = 8  // debug_event replies per debug_events request
)

// ErrBadArgument is returned by a handler for out of range arguments
var ErrBadArgument = errors.New("argument out of range")

// registerCommands fills the registry. identify_response and identify
// must stay first so hosts can find them before reading the dictionary.
func (f *Firmware) registerCommands() {
	r := f.registry

	r.RegisterResponse("identify_response", "offset=%u data=%.*s")
	r.Register("identify", "offset=%u count=%c", f.cmdIdentify)

	r.RegisterResponse("time", "year=%hu month=%c day=%c hour=%c minute=%c second=%c weekday=%c offset=%hi summer=%c")
	r.Register("get_time", "", f.cmdGetTime)
	r.Register("set_time", "utc=%u", f.cmdSetTime)

	r.RegisterResponse("alarm", "slot=%c enabled=%c hour=%c minute=%c days=%c sound=%c")
	r.Register("get_alarm", "slot=%c", f.cmdGetAlarm)
	r.Register("set_alarm", "slot=%c enabled=%c hour=%c minute=%c days=%c sound=%c", f.cmdSetAlarm)

	r.RegisterResponse("status", "ringing=%hu paused=%c pause_hours=%c countdown=%hu temp=%hi humidity=%hu setup=%c")
	r.Register("get_status", "", f.cmdGetStatus)
	r.Register("pause_alarms", "hours=%c", f.cmdPauseAlarms)
	r.Register("start_countdown", "seconds=%hu", f.cmdStartCountdown)
	r.Register("save_config", "", f.cmdSaveConfig)

	r.RegisterResponse("debug_event", "index=%c type=%c source=%c clock=%u v1=%u v2=%u")
	r.Register("debug_events", "start=%c count=%c", f.cmdDebugEvents)

	f.dict.AddConstant("MCU", "rp2040")
	f.dict.AddConstant("CLOCK_FREQ", uint32(core.TimerFreq))
	f.dict.AddConstant("ALARM_SLOTS", clock.AlarmSlots)
	f.dict.AddConstant("MAX_COUNTDOWN", clock.MaxCountdown)

	regions := make([]string, len(clock.Rules))
	for i, rule := range clock.Rules {
		regions[i] = rule.Name
	}
	f.dict.AddEnumeration("region", regions)

	sounds := make([]string, len(sound.Patterns))
	for i, p := range sound.Patterns {
		sounds[i] = p.Name
	}
	f.dict.AddEnumeration("sound", sounds)
}

func (f *Firmware) cmdIdentify(data *[]byte) error {
	var offset, count uint32
	if err := protocol.DecodeArgs(data, &offset, &count); err != nil {
		return err
	}
	if count > IdentifyChunk {
		count = IdentifyChunk
	}

	chunk := f.dict.GetChunk(offset, uint8(count))
	return f.registry.SendResponse("identify_response", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, offset)
		protocol.EncodeVLQBytes(out, chunk)
	})
}

func (f *Firmware) cmdGetTime(data *[]byte) error {
	w := f.Clock.Now()
	s := f.Clock.Settings()
	var summer uint32
	if s.Summer {
		summer = 1
	}
	return f.registry.SendResponse("time", func(out protocol.OutputBuffer) {
		protocol.EncodeArgs(out, uint32(w.Year), uint32(w.Month), uint32(w.Day),
			uint32(w.Hour), uint32(w.Minute), uint32(w.Second), uint32(w.Weekday))
		protocol.EncodeVLQInt(out, int32(s.Offset))
		protocol.EncodeVLQUint(out, summer)
	})
}

func (f *Firmware) cmdSetTime(data *[]byte) error {
	var utc uint32
	if err := protocol.DecodeArgs(data, &utc); err != nil {
		return err
	}
	f.Clock.SetFromUTC(time.Unix(int64(utc), 0))
	f.syncRTC()
	f.savePending.Store(true)
	f.refresh.Store(true)
	return nil
}

func (f *Firmware) sendAlarm(slot int) error {
	a := f.Clock.Alarm(slot)
	var enabled uint32
	if a.Enabled {
		enabled = 1
	}
	return f.registry.SendResponse("alarm", func(out protocol.OutputBuffer) {
		protocol.EncodeArgs(out, uint32(slot), enabled, uint32(a.Hour), uint32(a.Minute),
			uint32(a.Days), uint32(a.Sound))
	})
}

func (f *Firmware) cmdGetAlarm(data *[]byte) error {
	var slot uint32
	if err := protocol.DecodeArgs(data, &slot); err != nil {
		return err
	}
	if slot >= clock.AlarmSlots {
		return ErrBadArgument
	}
	return f.sendAlarm(int(slot))
}

func (f *Firmware) cmdSetAlarm(data *[]byte) error {
	var slot, enabled, hour, minute, days, snd uint32
	if err := protocol.DecodeArgs(data, &slot, &enabled, &hour, &minute, &days, &snd); err != nil {
		return err
	}
	if slot >= clock.AlarmSlots || hour > 23 || minute > 59 || days > 0xFF || int(snd) >= len(sound.Patterns) {
		return ErrBadArgument
	}

	a := f.Clock.Alarm(int(slot))
	a.Enabled = enabled != 0
	a.Hour = uint8(hour)
	a.Minute = uint8(minute)
	a.Days = clock.DayMask(days) &^ 1
	a.Sound = uint8(snd)
	f.Clock.SetAlarm(int(slot), a)
	f.savePending.Store(true)
	return f.sendAlarm(int(slot))
}

func (f *Firmware) cmdGetStatus(data *[]byte) error {
	st := f.Status()
	var paused uint32
	if st.Paused {
		paused = 1
	}
	return f.registry.SendResponse("status", func(out protocol.OutputBuffer) {
		protocol.EncodeArgs(out, uint32(st.Ringing), paused, uint32(st.PauseHours), uint32(st.Countdown.Remaining))
		protocol.EncodeVLQInt(out, int32(st.Reading.TempC10))
		protocol.EncodeArgs(out, uint32(st.Reading.Humidity10), uint32(st.Setup.Domain))
	})
}

func (f *Firmware) cmdPauseAlarms(data *[]byte) error {
	var hours uint32
	if err := protocol.DecodeArgs(data, &hours); err != nil {
		return err
	}
	if hours > 0xFF {
		return ErrBadArgument
	}
	f.Clock.SetPause(uint8(hours))
	f.refresh.Store(true)
	return nil
}

func (f *Firmware) cmdStartCountdown(data *[]byte) error {
	var seconds uint32
	if err := protocol.DecodeArgs(data, &seconds); err != nil {
		return err
	}
	if seconds > clock.MaxCountdown {
		seconds = clock.MaxCountdown
	}
	f.Clock.StartCountdown(uint16(seconds))
	return nil
}

func (f *Firmware) cmdSaveConfig(data *[]byte) error {
	f.savePending.Store(true)
	return nil
}

// cmdDebugEvents replies with at most DebugEventsMax events so the replies
// fit the output buffer; the host pages through with start
func (f *Firmware) cmdDebugEvents(data *[]byte) error {
	var start, count uint32
	if err := protocol.DecodeArgs(data, &start, &count); err != nil {
		return err
	}
	if count > DebugEventsMax {
		count = DebugEventsMax
	}

	events := core.Events()
	for i := start; i < start+count && int(i) < len(events); i++ {
		ev := events[i]
		idx := i
		err := f.registry.SendResponse("debug_event", func(out protocol.OutputBuffer) {
			protocol.EncodeArgs(out, idx, uint32(ev.Type), uint32(ev.Source), ev.Clock, ev.Value1, ev.Value2)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

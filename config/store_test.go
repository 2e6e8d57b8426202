package config

import (
	"errors"
	"testing"

	"picoclock/clock"
)

func TestLoadEmptyWritesDefaults(t *testing.T) {
	store := &MemoryStore{}

	r, err := Load(store)
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
	if r.RingTimeout != DefaultRingTimeout {
		t.Errorf("Expected defaults, got %+v", r)
	}
	if store.Writes != 1 {
		t.Errorf("Expected defaults written back once, got %d writes", store.Writes)
	}

	again, err := Load(store)
	if err != nil {
		t.Fatalf("Expected the written defaults to load, got %v", err)
	}
	if again.ChimeEnd != DefaultChimeEnd || store.Writes != 1 {
		t.Errorf("Expected a clean load without another write, got %+v after %d writes", again, store.Writes)
	}
}

func TestErasedFlash(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = 0xFF
	}
	if _, err := Decode(data); err != ErrEmpty {
		t.Errorf("Expected ErrEmpty for erased flash, got %v", err)
	}
}

func TestChecksumMismatch(t *testing.T) {
	r := Defaults()
	r.Region = 2
	data, err := Encode(r)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data[5] ^= 0x01

	store := &MemoryStore{}
	store.Write(data)
	got, err := Load(store)
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("Expected ErrChecksum, got %v", err)
	}
	if got.Region != 0 {
		t.Errorf("Expected defaults after a bad checksum, got region %d", got.Region)
	}
}

func TestSaveLoad(t *testing.T) {
	r := Defaults()
	r.Alarms[3] = Alarm{Hour: 6, Minute: 45, Days: uint8(clock.Weekend), Sound: 2, Label: "gym"}
	r.Region = 3
	r.Offset = -300
	r.Calendar = []CalendarEvent{{Day: 16, Month: 10, Text: "Birthday"}}

	store := &MemoryStore{}
	if err := Save(store, r); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := Load(store)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Alarms[3] != r.Alarms[3] || got.Offset != -300 || len(got.Calendar) != 1 {
		t.Errorf("Expected %+v, got %+v", r, got)
	}
}

func TestApplyDefaultsRepairsFields(t *testing.T) {
	r := Defaults()
	r.ChimeStart = 40
	r.Region = 99
	r.Summer = true
	r.RingTimeout = 0
	r.Alarms[0].Hour = 30
	r.Calendar = []CalendarEvent{{Day: 0, Month: 5}, {Day: 1, Month: 1, Text: "New year"}}

	r.applyDefaults()

	if r.ChimeStart != DefaultChimeStart || r.Region != 0 || r.Summer {
		t.Errorf("Expected chime and region repaired, got %+v", r)
	}
	if r.RingTimeout != DefaultRingTimeout || r.Alarms[0].Hour != 7 {
		t.Errorf("Expected ring timeout and alarm repaired, got %+v", r)
	}
	if len(r.Calendar) != 1 || r.Calendar[0].Text != "New year" {
		t.Errorf("Expected invalid calendar entry dropped, got %+v", r.Calendar)
	}
}

func TestSettingsDisablesAlarms(t *testing.T) {
	r := Defaults()
	s := r.Settings()
	for i, a := range s.Alarms {
		if a.Enabled {
			t.Errorf("Alarm %d came up enabled", i)
		}
	}

	s.Alarms[1].Enabled = true
	s.Alarms[1].Hour = 5
	r.Update(s)
	if r.Alarms[1].Hour != 5 {
		t.Errorf("Expected hour 5 stored, got %d", r.Alarms[1].Hour)
	}
	if r.Settings().Alarms[1].Enabled {
		t.Error("Enabled flag must not survive a round trip through the record")
	}
}

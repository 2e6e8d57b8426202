package main

import (
	"testing"

	"picoclock/host/device"
)

func TestParseDays(t *testing.T) {
	tests := []struct {
		in   string
		want uint8
	}{
		{"everyday", 0xFE},
		{"weekdays", 0x7C},
		{"weekend", 0x82},
		{"0x3F", 0x3E},
		{"4", 4},
	}
	for _, tt := range tests {
		got, err := parseDays(tt.in)
		if err != nil {
			t.Errorf("parseDays(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDays(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
	if _, err := parseDays("sometimes"); err == nil {
		t.Error("Expected an error for an unknown preset")
	}
}

func TestParseSound(t *testing.T) {
	dict := &device.Dictionary{Enumerations: map[string]map[string]int{"sound": {"beep": 0, "melody": 2}}}
	if got, err := parseSound(dict, "melody"); err != nil || got != 2 {
		t.Errorf("Expected melody = 2, got %d (%v)", got, err)
	}
	if got, err := parseSound(dict, "3"); err != nil || got != 3 {
		t.Errorf("Expected 3, got %d (%v)", got, err)
	}
	if _, err := parseSound(dict, "siren"); err == nil {
		t.Error("Expected an error for an unknown sound")
	}
}

func TestArgUint(t *testing.T) {
	if _, err := argUint(nil, 0, 8); err == nil {
		t.Error("Expected missing argument error")
	}
	if _, err := argUint([]string{"9"}, 0, 8); err == nil {
		t.Error("Expected range error")
	}
	if v, err := argUint([]string{"8"}, 0, 8); err != nil || v != 8 {
		t.Errorf("Expected 8, got %d (%v)", v, err)
	}
}

package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Listen != ":8080" || s.ResyncInterval != time.Hour {
		t.Errorf("Unexpected defaults %+v", s)
	}
}

func TestLoadSettingsFile(t *testing.T) {
	path := writeSettings(t, `
listen: ":9090"
resync_interval: 10m
mqtt:
  broker: tcp://broker:1883
buttons:
  chip: gpiochip0
  pins: [17, 27, 22]
temperature: 19.5
`)
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.Listen != ":9090" {
		t.Errorf("Expected :9090, got %s", s.Listen)
	}
	if s.ResyncInterval != 10*time.Minute {
		t.Errorf("Expected 10m, got %v", s.ResyncInterval)
	}
	if s.MQTT.Broker != "tcp://broker:1883" || s.MQTT.Topic != "picoclock/events" {
		t.Errorf("Unexpected mqtt settings %+v", s.MQTT)
	}
	if len(s.Buttons.Pins) != 3 || s.Buttons.Pins[2] != 22 {
		t.Errorf("Unexpected pins %v", s.Buttons.Pins)
	}
	if s.Temperature != 19.5 {
		t.Errorf("Expected 19.5, got %v", s.Temperature)
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unknown field", "colour: red\n"},
		{"short pins", "buttons:\n  chip: gpiochip0\n  pins: [1, 2]\n"},
		{"bad yaml", "listen: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadSettings(writeSettings(t, tt.text)); err == nil {
				t.Error("Expected error")
			}
		})
	}
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

package sim

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Settings configure the simulator. They are read from a YAML file; flags
// override individual fields.
type Settings struct {
	Listen         string        `yaml:"listen"`
	Database       string        `yaml:"database"`
	Chrony         string        `yaml:"chrony"`
	ResyncInterval time.Duration `yaml:"resync_interval"`
	Debug          bool          `yaml:"debug"`

	MQTT struct {
		Broker   string `yaml:"broker"`
		Topic    string `yaml:"topic"`
		ClientID string `yaml:"client_id"`
	} `yaml:"mqtt"`

	// Optional physical buttons on a Linux GPIO chip, Mode/Up/Down order
	Buttons struct {
		Chip string `yaml:"chip"`
		Pins []int  `yaml:"pins"`
	} `yaml:"buttons"`

	// Simulated environment
	Light       uint16  `yaml:"light"`
	Temperature float64 `yaml:"temperature"`
	Humidity    float64 `yaml:"humidity"`
}

// DefaultSettings returns the settings used when no file is given
func DefaultSettings() Settings {
	var s Settings
	s.Listen = ":8080"
	s.Database = "picoclock.db"
	s.ResyncInterval = time.Hour
	s.MQTT.Topic = "picoclock/events"
	s.MQTT.ClientID = "picoclock-sim"
	s.Light = 0x8000
	s.Temperature = 21.5
	s.Humidity = 45
	return s
}

// LoadSettings reads path over the defaults. An empty path returns the
// defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s.Buttons.Chip != "" && len(s.Buttons.Pins) != 3 {
		return s, fmt.Errorf("buttons: need 3 pins, got %d", len(s.Buttons.Pins))
	}
	return s, nil
}

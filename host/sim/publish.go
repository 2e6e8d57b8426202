package sim

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"picoclock/clock"
)

// Publisher sends clock events somewhere outside the simulator
type Publisher interface {
	// Publish sends one event. Errors are logged by the caller, never fatal.
	Publish(ev clock.Event, at time.Time) error
	Close() error
}

// Payload is the MQTT message body
type Payload struct {
	Clock EventPayload `json:"clock"`
}

// EventPayload describes one clock event
type EventPayload struct {
	Timestamp string `json:"timestamp"`
	Local     string `json:"local"`
	Event     string `json:"event"`
	Slot      uint8  `json:"slot"`
	Text      string `json:"text,omitempty"`
}

// FormatPayload renders ev as JSON. at is the UTC instant of the event;
// the local wall clock comes from the event itself.
func FormatPayload(ev clock.Event, at time.Time) ([]byte, error) {
	w := ev.Clock
	return json.Marshal(Payload{
		Clock: EventPayload{
			Timestamp: at.UTC().Format(time.RFC3339),
			Local: fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
				w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second),
			Event: ev.Kind.String(),
			Slot:  ev.Slot,
			Text:  ev.Text,
		},
	})
}

// MQTTPublisher publishes to a broker
type MQTTPublisher struct {
	client paho.Client
	topic  string
}

// NewMQTTPublisher connects to broker and publishes on topic
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return &MQTTPublisher{client: client, topic: topic}, nil
}

func (p *MQTTPublisher) Publish(ev clock.Event, at time.Time) error {
	payload, err := FormatPayload(ev, at)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

// FakePublisher records events for tests
type FakePublisher struct {
	mu     sync.Mutex
	events []clock.Event
	closed bool
}

func (f *FakePublisher) Publish(ev clock.Event, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Events returns a copy of everything published
func (f *FakePublisher) Events() []clock.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]clock.Event(nil), f.events...)
}

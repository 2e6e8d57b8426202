package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"picoclock/clock"
	"picoclock/firmware"
)

// Metrics exports the clock state for scraping
type Metrics struct {
	ringing     prometheus.Gauge
	paused      prometheus.Gauge
	night       prometheus.Gauge
	brightness  prometheus.Gauge
	temperature prometheus.Gauge
	humidity    prometheus.Gauge
	drops       prometheus.Gauge
	overruns    prometheus.Gauge
	events      *prometheus.CounterVec
	lag         prometheus.Histogram
}

// NewMetrics registers the simulator metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ringing: f.NewGauge(prometheus.GaugeOpts{
			Name: "picoclock_ringing",
			Help: "Bitmask of alarm slots and countdown currently ringing.",
		}),
		paused: f.NewGauge(prometheus.GaugeOpts{
			Name: "picoclock_alarms_paused",
			Help: "1 while alarms are paused.",
		}),
		night: f.NewGauge(prometheus.GaugeOpts{
			Name: "picoclock_night",
			Help: "1 while the night light window is active.",
		}),
		brightness: f.NewGauge(prometheus.GaugeOpts{
			Name: "picoclock_brightness",
			Help: "Display brightness level, 0 to 15.",
		}),
		temperature: f.NewGauge(prometheus.GaugeOpts{
			Name: "picoclock_temperature_celsius",
			Help: "Last temperature reading.",
		}),
		humidity: f.NewGauge(prometheus.GaugeOpts{
			Name: "picoclock_humidity_percent",
			Help: "Last relative humidity reading.",
		}),
		drops: f.NewGauge(prometheus.GaugeOpts{
			Name: "picoclock_queue_drops",
			Help: "Pushes rejected by a full queue since boot.",
		}),
		overruns: f.NewGauge(prometheus.GaugeOpts{
			Name: "picoclock_timer_overruns",
			Help: "Periodic callback activations missed since boot.",
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "picoclock_events_total",
			Help: "Clock events seen by the main loop.",
		}, []string{"kind"}),
		lag: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "picoclock_tick_lag_seconds",
			Help:    "How late the simulator loop ran relative to its one millisecond tick.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 10),
		}),
	}
}

// Observe updates the gauges from a status snapshot
func (m *Metrics) Observe(st firmware.Status) {
	m.ringing.Set(float64(st.Ringing))
	m.paused.Set(boolValue(st.Paused))
	m.night.Set(boolValue(st.Night))
	m.brightness.Set(float64(st.Brightness))
	if st.ReadingOK {
		m.temperature.Set(float64(st.Reading.TempC10) / 10)
		m.humidity.Set(float64(st.Reading.Humidity10) / 10)
	}
	m.drops.Set(float64(st.Drops))
	m.overruns.Set(float64(st.Overruns))
}

// Event counts one clock event
func (m *Metrics) Event(ev clock.Event) {
	m.events.WithLabelValues(ev.Kind.String()).Inc()
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

package runtime

import (
	"time"

	"termfolio/internal/shell"

	"github.com/prometheus/client_golang/prometheus"
)

var _ shell.Recorder = (*Metrics)(nil)

// Metrics is a shell.Recorder backed by prometheus collectors.
type Metrics struct {
	Commands      *prometheus.CounterVec
	AsyncInflight prometheus.Gauge
	AsyncDuration *prometheus.HistogramVec
}

// NewMetrics creates the engine collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termfolio",
			Name:      "commands_total",
			Help:      "Command lines executed, labeled by class and outcome.",
		}, []string{"class", "outcome"}),
		AsyncInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "termfolio",
			Name:      "async_inflight",
			Help:      "Async commands awaiting their resolver.",
		}),
		AsyncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "termfolio",
			Name:      "async_duration_seconds",
			Help:      "Histogram of async resolver durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Commands, m.AsyncInflight, m.AsyncDuration)
	}
	return m
}

func (m *Metrics) Executed(class shell.Class, outcome string) {
	m.Commands.WithLabelValues(class.String(), outcome).Inc()
}

func (m *Metrics) AsyncStarted(string) {
	m.AsyncInflight.Inc()
}

func (m *Metrics) AsyncSettled(name string, d time.Duration, err error) {
	m.AsyncInflight.Dec()
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.AsyncDuration.WithLabelValues(name, result).Observe(d.Seconds())
}

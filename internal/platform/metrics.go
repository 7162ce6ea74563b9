package platform

import (
	"sync"

	"termfolio/internal/runtime"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	// EngineMetrics feeds command counters from every session engine.
	EngineMetrics *runtime.Metrics

	metricsOnce sync.Once
)

// InitMetrics registers the collectors with the default registry. Safe to
// call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termfolio",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed, labeled by method, route and status.",
		}, []string{"method", "route", "status"})

		HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "termfolio",
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of request durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})

		prometheus.MustRegister(HTTPRequestsTotal, HTTPDuration)
		EngineMetrics = runtime.NewMetrics(prometheus.DefaultRegisterer)
	})
}

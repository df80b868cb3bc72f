// Package metrics exposes Prometheus collectors for resolve outcomes and
// upstream provider traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_resolve_total",
			Help: "Total number of resolve calls by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_upstream_requests_total",
			Help: "Total number of outbound provider requests",
		},
		[]string{"provider", "endpoint", "result"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_upstream_request_duration_seconds",
			Help:    "Outbound provider request duration in seconds",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "endpoint"},
	)

	ProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_probe_total",
			Help: "Total number of scheduled upstream probes by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordResolve counts one resolve call.
func RecordResolve(mode, outcome string) {
	ResolveTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordUpstream counts one outbound request and observes its duration.
func RecordUpstream(provider, endpoint, result string, seconds float64) {
	UpstreamRequestsTotal.WithLabelValues(provider, endpoint, result).Inc()
	UpstreamRequestDuration.WithLabelValues(provider, endpoint).Observe(seconds)
}

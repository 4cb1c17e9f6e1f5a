package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// GenerationRuns counts itinerary generation runs by outcome
	// (ok, invalid_input, travel_lookup_failed, lock_timeout, error).
	GenerationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "itinerary_generation_runs_total", Help: "Itinerary generation runs by outcome."},
		[]string{"outcome"},
	)
	// GenerationConflicts counts per-event scheduling conflicts by reason.
	GenerationConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "itinerary_generation_conflicts_total", Help: "Scheduling conflicts by reason."},
		[]string{"reason"},
	)
	// GenerationDuration records end-to-end generation pipeline durations.
	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itinerary_generation_duration_seconds",
			Help:    "Itinerary generation duration in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(GenerationRuns)
		Registry.MustRegister(GenerationConflicts)
		Registry.MustRegister(GenerationDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Package metric provides Prometheus metrics for deckshare.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "deckshare"

// Registry holds all application metrics on a private Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Listing metrics
	EntriesListed   prometheus.Counter
	EntriesSkipped  prometheus.Counter
	ListingFailures prometheus.Counter

	// Preview metrics
	PreviewsTotal *prometheus.CounterVec

	// Lifecycle metrics
	IdleSeconds   prometheus.Gauge
	WatchdogState prometheus.Gauge
}

// NewRegistry creates a registry with the Go and process collectors and
// every deckshare metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		EntriesListed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "browse_entries_listed_total",
			Help:      "Directory entries returned by browse requests.",
		}),
		EntriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "browse_entries_skipped_total",
			Help:      "Directory entries dropped because their name or metadata was unreadable.",
		}),
		ListingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "browse_failures_total",
			Help:      "Browse requests whose target directory could not be read.",
		}),
		PreviewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "previews_total",
			Help:      "Thumbnail requests by outcome (hit, rendered, error).",
		}, []string{"result"}),
		IdleSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "idle_seconds",
			Help:      "Seconds since the last recorded client activity.",
		}),
		WatchdogState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watchdog_state",
			Help:      "Idle watchdog state (0 running, 1 shutting down).",
		}),
	}

	reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.EntriesListed,
		r.EntriesSkipped,
		r.ListingFailures,
		r.PreviewsTotal,
		r.IdleSeconds,
		r.WatchdogState,
	)
	return r
}

// RecordRequest counts one finished HTTP request and observes its latency.
func (r *Registry) RecordRequest(route, status string, seconds float64) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(route, status).Inc()
	r.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordListing records the outcome of a successful listing.
func (r *Registry) RecordListing(listed, skipped int) {
	if r == nil {
		return
	}
	r.EntriesListed.Add(float64(listed))
	r.EntriesSkipped.Add(float64(skipped))
}

// IncListingFailure counts one browse request that failed hard.
func (r *Registry) IncListingFailure() {
	if r == nil {
		return
	}
	r.ListingFailures.Inc()
}

// RecordPreview counts one thumbnail request by outcome.
func (r *Registry) RecordPreview(result string) {
	if r == nil {
		return
	}
	r.PreviewsTotal.WithLabelValues(result).Inc()
}

// SetIdle records the current idle duration and watchdog state.
func (r *Registry) SetIdle(seconds float64, shuttingDown bool) {
	if r == nil {
		return
	}
	r.IdleSeconds.Set(seconds)
	if shuttingDown {
		r.WatchdogState.Set(1)
	} else {
		r.WatchdogState.Set(0)
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

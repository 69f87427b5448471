// Package metric provides Prometheus metrics for deckshare.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: private registry, metric families and HTTP handler
//
// Metrics include:
//
//   - HTTP request counts and latency histograms
//   - Directory listing outcomes (entries listed, entries skipped, failures)
//   - Idle watchdog gauges (seconds idle, lifecycle state)
//
// Metrics are exposed at /metrics in Prometheus format when enabled.
package metric

// Package httpserver provides the HTTPS server for deckshare.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/deckshare/internal/telemetry/metric"
)

// MetricsPath is where Prometheus metrics are exposed when enabled.
const MetricsPath = "/metrics"

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// App serves every non-metrics route.
	App http.Handler

	// Metrics records request metrics; nil disables them.
	Metrics *metric.Registry

	// ExposeMetrics mounts GET /metrics. Requires Metrics.
	ExposeMetrics bool

	// RateLimit is the per-client request rate; zero disables limiting.
	RateLimit float64
	RateBurst int

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter wraps the application handler in the middleware chain and
// mounts the metrics endpoint.
//
// Order: RequestID -> AccessLog -> Recover -> RateLimit -> routes
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	if cfg.ExposeMetrics && cfg.Metrics != nil {
		mux.Handle("GET "+MetricsPath, cfg.Metrics.Handler())
	}
	mux.Handle("/", cfg.App)

	middlewares := []Middleware{
		RequestID(cfg.Logger),
		AccessLog(cfg.Metrics),
		Recover(),
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(NewRateLimiterRegistry(cfg.RateLimit, cfg.RateBurst)))
	}

	return Chain(mux, middlewares...)
}

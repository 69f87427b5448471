// Package handler provides HTTP request handlers for deckshare.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/deckshare/internal/core/activity"
	"github.com/yndnr/deckshare/internal/core/domain"
	"github.com/yndnr/deckshare/internal/core/listing"
	"github.com/yndnr/deckshare/internal/core/preview"
	"github.com/yndnr/deckshare/internal/telemetry/logger"
	"github.com/yndnr/deckshare/internal/telemetry/metric"
)

// Route prefixes.
const (
	BrowsePath   = "/api/browse"
	DownloadPath = "/api/download/"
	HealthPath   = "/api/health"
	PreviewPath  = "/api/preview/"
)

// Deps are the collaborators a Handler needs.
type Deps struct {
	Clock  *activity.Clock
	Lister *listing.Lister

	// BaseDir is the shared tree, used for browse and download.
	BaseDir string

	// StaticDir holds the front-end assets served for every other path.
	StaticDir string

	// CountDownloads makes download and preview requests touch the clock.
	CountDownloads bool

	// Preview serves thumbnails under PreviewPath. Nil leaves the route
	// unregistered.
	Preview *preview.Generator

	// Metrics may be nil.
	Metrics *metric.Registry
	Logger  *slog.Logger
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	clock   *activity.Clock
	lister  *listing.Lister
	preview *preview.Generator
	baseDir string
	metrics *metric.Registry
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates a new Handler with the given dependencies.
func New(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Lister == nil {
		deps.Lister = listing.NewLister(listing.WithLogger(deps.Logger))
	}

	h := &Handler{
		clock:   deps.Clock,
		lister:  deps.Lister,
		preview: deps.Preview,
		baseDir: deps.BaseDir,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		mux:     http.NewServeMux(),
	}

	h.registerRoutes(deps)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes(deps Deps) {
	h.mux.HandleFunc("GET "+BrowsePath, h.handleBrowse)
	h.mux.HandleFunc("GET "+HealthPath, h.handleHealth)

	var downloads http.Handler = NewStatic(deps.BaseDir, h.logger)
	if deps.CountDownloads {
		downloads = h.touching(downloads)
	}
	h.mux.Handle("GET "+DownloadPath, http.StripPrefix(strings.TrimSuffix(DownloadPath, "/"), downloads))

	if h.preview != nil {
		var previews http.Handler = http.HandlerFunc(h.handlePreview)
		if deps.CountDownloads {
			previews = h.touching(previews)
		}
		h.mux.Handle("GET "+PreviewPath, previews)
	}

	h.mux.Handle("GET /", NewStatic(deps.StaticDir, h.logger))
}

// touching records activity before delegating to next.
func (h *Handler) touching(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.clock.Touch()
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes v as a bare JSON document.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, nil)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// WriteInternalError writes the opaque 500 envelope. Used by middleware.
func WriteInternalError(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusInternalServerError,
		domain.ErrInternalServer.Code, domain.ErrInternalServer.Message)
}

// WriteRateLimited writes the 429 envelope. Used by middleware.
func WriteRateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusTooManyRequests,
		domain.ErrRateLimited.Code, domain.ErrRateLimited.Message)
}

// getRequestID extracts request ID from context or header.
func getRequestID(r *http.Request) string {
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Request-ID")
}

// handleDomainError converts listing errors to HTTP responses.
// Only the code and the generic message reach the client.
func (h *Handler) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.GetErrorCode(err)
	status := errorCodeToHTTPStatus(code)

	if status >= http.StatusInternalServerError {
		logger.L(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
		WriteInternalError(w, r)
		return
	}

	logger.L(r.Context()).Warn("request rejected", "error", err, "path", r.URL.Path)
	message := "request rejected"
	var de *domain.DomainError
	if errors.As(err, &de) {
		message = de.Message
	}
	writeError(w, r, status, code, message)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

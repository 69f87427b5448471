// Package handler provides HTTP request handlers for deckshare.
package handler

import (
	"net/http"
	"strconv"

	"github.com/yndnr/deckshare/internal/core/listing"
	"github.com/yndnr/deckshare/internal/telemetry/logger"
)

// handleBrowse handles GET /api/browse?path=<rel>[&hidden=<bool>].
//
// Every request counts as activity, including ones that fail. The touch
// happens before the directory is read. An unparsable hidden value is
// ignored and the configured filter applies.
func (h *Handler) handleBrowse(w http.ResponseWriter, r *http.Request) {
	h.clock.Touch()

	query := r.URL.Query()
	rel := query.Get("path")

	var opts []listing.ListOption
	if show, err := strconv.ParseBool(query.Get("hidden")); err == nil {
		opts = append(opts, listing.ShowHidden(show))
	}

	result, err := h.lister.List(h.baseDir, rel, opts...)
	if err != nil {
		h.metrics.IncListingFailure()
		h.handleDomainError(w, r, err)
		return
	}

	h.metrics.RecordListing(len(result.Entries), len(result.Failures))
	if n := len(result.Failures); n > 0 {
		logger.L(r.Context()).Warn("listing returned with dropped entries",
			"path", rel,
			"listed", len(result.Entries),
			"dropped", n,
		)
	}
	if result.Interrupted != nil {
		logger.L(r.Context()).Warn("listing is incomplete",
			"path", rel,
			"listed", len(result.Entries),
			"error", result.Interrupted,
		)
	}

	h.writeJSON(w, r, http.StatusOK, result.Entries)
}

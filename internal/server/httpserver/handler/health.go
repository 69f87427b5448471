// Package handler provides HTTP request handlers for deckshare.
package handler

import "net/http"

// handleHealth handles GET /api/health. It reports how long the server has
// been idle without counting as activity itself.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:      "healthy",
		IdleSeconds: int64(h.clock.SinceLastTouch().Seconds()),
	})
}

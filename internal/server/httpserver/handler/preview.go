package handler

import (
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yndnr/deckshare/internal/core/domain"
)

// handlePreview handles GET /api/preview/<rel> with a JPEG thumbnail of the
// image at <rel> below the share root.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean("/" + strings.TrimPrefix(r.URL.Path, PreviewPath))
	target := filepath.Join(h.baseDir, filepath.FromSlash(rel))

	thumb, err := h.preview.Thumbnail(r.Context(), target)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		h.metrics.RecordPreview("error")
		if errors.Is(err, domain.ErrPreviewNotFound) {
			NotFound(w, r)
			return
		}
		h.handleDomainError(w, r, err)
		return
	}

	if thumb.Cached {
		h.metrics.RecordPreview("hit")
	} else {
		h.metrics.RecordPreview("rendered")
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(thumb.Data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(thumb.Data)
}

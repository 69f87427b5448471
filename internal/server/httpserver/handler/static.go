// Package handler provides HTTP request handlers for deckshare.
package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
)

// Static serves files below root. A directory is answered with its
// index.html when present; anything else that cannot be served is a 404 with
// a plain "Not Found" body.
type Static struct {
	fs     http.FileSystem
	logger *slog.Logger
}

// NewStatic creates a static file handler rooted at root.
func NewStatic(root string, logger *slog.Logger) *Static {
	if logger == nil {
		logger = slog.Default()
	}
	return &Static{fs: http.Dir(root), logger: logger}
}

// ServeHTTP implements http.Handler.
func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)

	f, err := s.fs.Open(name)
	if err != nil {
		s.miss(w, r, name, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.miss(w, r, name, err)
		return
	}

	if info.IsDir() {
		index := path.Join(name, "index.html")
		idx, err := s.fs.Open(index)
		if err != nil {
			s.miss(w, r, index, err)
			return
		}
		defer idx.Close()

		idxInfo, err := idx.Stat()
		if err != nil || idxInfo.IsDir() {
			s.miss(w, r, index, fs.ErrNotExist)
			return
		}
		f, info = idx, idxInfo
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Static) miss(w http.ResponseWriter, r *http.Request, name string, err error) {
	if !errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("static file unavailable", "name", name, "error", err)
	}
	NotFound(w, r)
}

// NotFound writes the plain 404 response.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not Found"))
}

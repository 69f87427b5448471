// Package handler provides HTTP request handlers for deckshare.
//
// This package contains handlers for all HTTP endpoints:
//
//   - browse.go: directory listing (GET /api/browse)
//   - static.go: file downloads and front-end assets
//   - health.go: health check
//
// Browse requests and, optionally, downloads count as client activity and
// reset the idle clock. Error responses use the JSON envelope in types.go and
// never include filesystem paths; the details go to the server log.
package handler

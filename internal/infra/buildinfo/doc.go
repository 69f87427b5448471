// Package buildinfo provides build information for deckshare.
//
// Values injected via ldflags take priority; otherwise they are read from
// the module build info embedded by the Go toolchain (VCS revision and time).
//
// Usage:
//
//	go build -ldflags "-X github.com/yndnr/deckshare/internal/infra/buildinfo.Version=1.0.0"
package buildinfo

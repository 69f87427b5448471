// Package httpserver provides the HTTPS server for deckshare.
package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server represents the HTTPS server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	tlsConfig  *tls.Config
	logger     *slog.Logger

	mu    sync.RWMutex
	addr  net.Addr
	ready chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithTLSConfig serves TLS using cfg. Without it the server speaks plain HTTP.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

// WithTimeouts sets the read, write and keep-alive idle timeouts.
// Zero leaves a timeout disabled.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *Server) {
		s.httpServer.ReadTimeout = read
		s.httpServer.ReadHeaderTimeout = read
		s.httpServer.WriteTimeout = write
		s.httpServer.IdleTimeout = idle
	}
}

// WithLogger sets the logger for server errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new server for addr.
func New(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
		handler: handler,
		logger:  slog.Default(),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer.ErrorLog = slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn)
	return s
}

// Serve binds the listener and serves until ctx is canceled or serving
// fails. Cancellation closes the listener and all open connections; in-flight
// requests are not drained. A canceled server returns nil.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("httpserver: listen %s: %w", s.httpServer.Addr, err)
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("server listening",
		"addr", ln.Addr().String(),
		"tls", s.tlsConfig != nil,
	)

	stop := context.AfterFunc(ctx, func() {
		s.httpServer.Close()
	})
	defer stop()

	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listener address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Close closes the listener and all connections immediately.
func (s *Server) Close() error {
	return s.httpServer.Close()
}

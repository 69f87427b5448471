// Package httpserver provides the HTTPS server for deckshare.
//
// This package implements the external surface using stdlib net/http:
//
//   - Browse endpoint: /api/browse
//   - Downloads: /api/download/*
//   - Health and metrics: /api/health, /metrics
//   - Front-end assets: everything else
//
// Features:
//
//   - TLS with a certificate callback (hot reload through tlsroots)
//   - Middleware chain: RequestID, Recover, AccessLog, RateLimit
//   - Cancellation-driven close: the server stops when its context ends
//   - Prometheus metrics integration
package httpserver

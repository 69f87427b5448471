// Package config provides server configuration for deckshare.
//
// This package defines the server configuration structure and validation:
//
//   - server.go: ServerConfig struct definition and derived paths
//   - default.go: Default configuration values
//   - verify.go: Validation of ports, timeouts and required directories
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and command-line values.
package config

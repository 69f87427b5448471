// Package config defines the server configuration structure.
package config

import (
	"fmt"

	"github.com/yndnr/deckshare/internal/core/domain"
	"github.com/yndnr/deckshare/internal/telemetry/logger"
)

// Verify validates the configuration.
//
// Directory existence is not checked: a missing base directory surfaces as a
// failed browse request and missing TLS material ends the serving task, both
// at runtime.
func Verify(cfg *ServerConfig) error {
	if err := verifyShare(&cfg.Share); err != nil {
		return err
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyTLS(&cfg.TLS); err != nil {
		return err
	}
	if err := verifyIdle(&cfg.Idle); err != nil {
		return err
	}
	if err := verifyPreview(&cfg.Preview); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func invalid(format string, args ...any) error {
	return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf(format, args...))
}

func verifyShare(cfg *ShareSection) error {
	if cfg.BaseDir == "" {
		return invalid("share.base_dir is required")
	}
	if cfg.PluginDir == "" {
		return invalid("share.plugin_dir is required")
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return invalid("server.port %d out of range 1-65535", cfg.Port)
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		return invalid("server timeouts must not be negative")
	}
	if cfg.RateLimit < 0 {
		return invalid("server.rate_limit must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		return invalid("server.rate_burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func verifyTLS(cfg *TLSSection) error {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return invalid("tls.cert_file and tls.key_file are required")
	}
	return nil
}

func verifyIdle(cfg *IdleSection) error {
	if cfg.Timeout <= 0 {
		return invalid("idle.timeout must be positive")
	}
	if cfg.PollInterval <= 0 {
		return invalid("idle.poll_interval must be positive")
	}
	return nil
}

func verifyPreview(cfg *PreviewSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.MaxSize < 1 {
		return invalid("preview.max_size must be positive")
	}
	if cfg.Workers < 1 {
		return invalid("preview.workers must be at least 1")
	}
	if cfg.CacheEntries < 0 {
		return invalid("preview.cache_entries must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return invalid("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text", "console":
	default:
		return invalid("log.format %q is not one of json, text, console", cfg.Format)
	}
	return nil
}

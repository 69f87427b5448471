// Package config defines the server configuration structure.
package config

import (
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"time"
)

// ServerConfig is the root configuration for deckshare-server.
// It is immutable once the server has started.
type ServerConfig struct {
	Share   ShareSection   `koanf:"share"`
	Server  ServerSection  `koanf:"server"`
	TLS     TLSSection     `koanf:"tls"`
	Idle    IdleSection    `koanf:"idle"`
	Browse  BrowseSection  `koanf:"browse"`
	Preview PreviewSection `koanf:"preview"`
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
}

// ShareSection names the shared tree and the plugin directory.
type ShareSection struct {
	// BaseDir is the root of the shared directory tree.
	BaseDir string `koanf:"base_dir"`

	// PluginDir holds the certs/ and web/ subdirectories.
	PluginDir string `koanf:"plugin_dir"`

	// WebDir overrides <plugin_dir>/web when set.
	WebDir string `koanf:"web_dir"`
}

// ServerSection configures the HTTPS listener.
type ServerSection struct {
	BindAddr     string        `koanf:"bind_addr"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RateLimit is the per-client request rate in requests per second.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// TLSSection names the key pair inside <plugin_dir>/certs.
type TLSSection struct {
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`

	// Watch reloads the key pair when the files change.
	Watch bool `koanf:"watch"`
}

// IdleSection configures the idle watchdog.
type IdleSection struct {
	Timeout      time.Duration `koanf:"timeout"`
	PollInterval time.Duration `koanf:"poll_interval"`

	// CountDownloads makes download requests count as activity.
	CountDownloads bool `koanf:"count_downloads"`
}

// BrowseSection configures the browse endpoint.
type BrowseSection struct {
	// RejectTraversal refuses relative paths containing a ".." segment.
	RejectTraversal bool `koanf:"reject_traversal"`

	// HideDotfiles leaves dot-prefixed entries out of listings unless the
	// request sets hidden=true.
	HideDotfiles bool `koanf:"hide_dotfiles"`
}

// PreviewSection configures the image thumbnail endpoint.
type PreviewSection struct {
	Enabled bool `koanf:"enabled"`

	// MaxSize bounds thumbnail width and height in pixels.
	MaxSize      int `koanf:"max_size"`
	Workers      int `koanf:"workers"`
	CacheEntries int `koanf:"cache_entries"`
}

// LogSection configures logging.
type LogSection struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// MetricsSection configures the /metrics endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}

// Addr returns the listener address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Server.BindAddr, strconv.Itoa(c.Server.Port))
}

// CertsDir returns <plugin_dir>/certs.
func (c *ServerConfig) CertsDir() string {
	return filepath.Join(c.Share.PluginDir, "certs")
}

// CertPaths returns the certificate and key file paths.
func (c *ServerConfig) CertPaths() (certFile, keyFile string) {
	dir := c.CertsDir()
	return filepath.Join(dir, c.TLS.CertFile), filepath.Join(dir, c.TLS.KeyFile)
}

// StaticDir returns the directory served for front-end assets.
func (c *ServerConfig) StaticDir() string {
	if c.Share.WebDir != "" {
		return c.Share.WebDir
	}
	return filepath.Join(c.Share.PluginDir, "web")
}

// LogValue implements slog.LogValuer so the effective configuration can be
// logged at startup.
func (c *ServerConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_dir", c.Share.BaseDir),
		slog.String("plugin_dir", c.Share.PluginDir),
		slog.String("addr", c.Addr()),
		slog.Duration("idle_timeout", c.Idle.Timeout),
		slog.Bool("count_downloads", c.Idle.CountDownloads),
		slog.Bool("reject_traversal", c.Browse.RejectTraversal),
		slog.Bool("hide_dotfiles", c.Browse.HideDotfiles),
		slog.Bool("preview", c.Preview.Enabled),
		slog.Bool("metrics", c.Metrics.Enabled),
	)
}

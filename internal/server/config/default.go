// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultBindAddr     = "0.0.0.0"
	DefaultPort         = 9999
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 0 // downloads may be large
	DefaultConnIdle     = 30 * time.Second
	DefaultRateLimit    = 200
	DefaultRateBurst    = 400

	DefaultCertFile = "deckyfileserver_cert.pem"
	DefaultKeyFile  = "deckyfileserver_key.pem"

	DefaultIdleTimeout  = 60 * time.Second
	DefaultPollInterval = time.Second

	DefaultPreviewMaxSize      = 128
	DefaultPreviewWorkers      = 2
	DefaultPreviewCacheEntries = 256

	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogFile       = "/tmp/decky_fileserver.log"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 7
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			BindAddr:     DefaultBindAddr,
			Port:         DefaultPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultConnIdle,
			RateLimit:    DefaultRateLimit,
			RateBurst:    DefaultRateBurst,
		},
		TLS: TLSSection{
			CertFile: DefaultCertFile,
			KeyFile:  DefaultKeyFile,
			Watch:    true,
		},
		Idle: IdleSection{
			Timeout:      DefaultIdleTimeout,
			PollInterval: DefaultPollInterval,
		},
		Preview: PreviewSection{
			MaxSize:      DefaultPreviewMaxSize,
			Workers:      DefaultPreviewWorkers,
			CacheEntries: DefaultPreviewCacheEntries,
		},
		Log: LogSection{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			File:       DefaultLogFile,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
	}
}

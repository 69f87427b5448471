package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/deckshare/internal/infra/buildinfo"
	"github.com/yndnr/deckshare/internal/infra/confloader"
	"github.com/yndnr/deckshare/internal/infra/shutdown"
	"github.com/yndnr/deckshare/internal/infra/tlsroots"
	"github.com/yndnr/deckshare/internal/server/app"
	"github.com/yndnr/deckshare/internal/server/config"
	"github.com/yndnr/deckshare/internal/telemetry/logger"
)

// runServer is replaced in tests.
var runServer = app.Run

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:            "deckshare-server",
		Usage:           "share a directory over HTTPS until clients go idle",
		UsageText:       "deckshare-server [options] <base_dir> [port] <plugin_dir>",
		Version:         buildinfo.String(),
		Flags:           globalFlags(),
		Action:          serve,
		HideHelpCommand: true,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML configuration file",
			EnvVars: []string{"DECKSHARE_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format (json, text, console)",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "rotating log file path, empty to disable",
		},
		&cli.DurationFlag{
			Name:  "idle-timeout",
			Usage: "shut down after this long without browse requests",
		},
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "expose Prometheus metrics on /metrics",
		},
		&cli.BoolFlag{
			Name:  "preview",
			Usage: "serve image thumbnails on /api/preview/",
		},
		&cli.BoolFlag{
			Name:  "check",
			Usage: "validate the configuration and TLS material, then exit",
		},
	}
}

// overrides collects the values given on the command line, keyed by
// configuration path. Only flags that were set are included.
func overrides(c *cli.Context, args Positional) map[string]any {
	values := map[string]any{
		"share.base_dir":   args.BaseDir,
		"share.plugin_dir": args.PluginDir,
	}
	if args.Port != 0 {
		values["server.port"] = args.Port
	}
	if c.IsSet("log-level") {
		values["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		values["log.format"] = c.String("log-format")
	}
	if c.IsSet("log-file") {
		values["log.file"] = c.String("log-file")
	}
	if c.IsSet("idle-timeout") {
		values["idle.timeout"] = c.Duration("idle-timeout")
	}
	if c.IsSet("metrics") {
		values["metrics.enabled"] = c.Bool("metrics")
	}
	if c.IsSet("preview") {
		values["preview.enabled"] = c.Bool("preview")
	}
	return values
}

// loadConfig layers defaults, the config file, the environment and the
// command line, then verifies the result.
func loadConfig(c *cli.Context, args Positional) (*config.ServerConfig, error) {
	opts := []confloader.Option{confloader.WithOverrides(overrides(c, args))}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	cfg := config.Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(c *cli.Context, cfg *config.ServerConfig) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
		File: logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		},
	})
}

func serve(c *cli.Context) error {
	args, err := ParseArgs(c.Args().Slice())
	if err != nil {
		cli.ShowAppHelp(c)
		return err
	}

	cfg, err := loadConfig(c, args)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if args.Port == 0 {
		fmt.Fprintf(c.App.ErrWriter, "port argument %q missing or invalid, using %d\n", args.RawPort, cfg.Server.Port)
	}

	if c.Bool("check") {
		return check(c, cfg)
	}

	log, err := newLogger(c, cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("init logger: %v", err), 1)
	}
	defer log.Close()
	logger.SetDefault(log)

	ctx, stop := shutdown.WithSignals(c.Context)
	defer stop()

	res := runServer(ctx, cfg, app.Options{Logger: log.Logger})
	log.Info("deckshare-server exited", "reason", string(res.Reason))
	return nil
}

// check loads the key pair once without serving.
func check(c *cli.Context, cfg *config.ServerConfig) error {
	certFile, keyFile := cfg.CertPaths()
	w, err := tlsroots.NewWatcher(certFile, keyFile, tlsroots.WithLogger(logger.Discard()))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	w.Stop()
	fmt.Fprintf(c.App.Writer, "configuration OK, serving %s on %s until idle for %s\n",
		cfg.Share.BaseDir, cfg.Addr(), cfg.Idle.Timeout)
	if notAfter := w.NotAfter(); !notAfter.IsZero() {
		fmt.Fprintf(c.App.Writer, "certificate valid until %s\n", notAfter.UTC().Format(time.RFC3339))
	}
	return nil
}


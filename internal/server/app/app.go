package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/deckshare/internal/core/activity"
	"github.com/yndnr/deckshare/internal/core/listing"
	"github.com/yndnr/deckshare/internal/core/preview"
	"github.com/yndnr/deckshare/internal/core/watchdog"
	"github.com/yndnr/deckshare/internal/infra/buildinfo"
	"github.com/yndnr/deckshare/internal/infra/shutdown"
	"github.com/yndnr/deckshare/internal/infra/tlsroots"
	"github.com/yndnr/deckshare/internal/server/config"
	"github.com/yndnr/deckshare/internal/server/httpserver"
	"github.com/yndnr/deckshare/internal/server/httpserver/handler"
	"github.com/yndnr/deckshare/internal/telemetry/metric"
)

// shutdownTimeout bounds the cleanup hooks.
const shutdownTimeout = 5 * time.Second

// Options carries optional collaborators for Run.
type Options struct {
	Logger *slog.Logger

	// Metrics is created when nil.
	Metrics *metric.Registry

	// DirReader replaces the filesystem reader used for browse requests.
	DirReader listing.DirReader

	// OnListen is called with the bound address once the server accepts
	// connections.
	OnListen func(net.Addr)
}

// Result describes how a run ended.
type Result struct {
	Reason watchdog.Reason

	// ServeErr is the error that ended the serving task, if any.
	ServeErr error
}

// Run serves cfg until the watchdog shuts the server down and returns why.
// The configuration must already be verified.
func Run(ctx context.Context, cfg *config.ServerConfig, opts Options) Result {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = metric.NewRegistry()
	}

	log.Info("starting deckshare-server",
		"version", buildinfo.Get().Version,
		"config", cfg,
	)

	clock := activity.NewClock()

	listerOpts := []listing.Option{
		listing.WithLogger(log),
		listing.RejectTraversal(cfg.Browse.RejectTraversal),
		listing.HideDotfiles(cfg.Browse.HideDotfiles),
	}
	if opts.DirReader != nil {
		listerOpts = append(listerOpts, listing.WithDirReader(opts.DirReader))
	}

	var thumbs *preview.Generator
	if cfg.Preview.Enabled {
		thumbs = preview.New(
			preview.WithMaxSize(cfg.Preview.MaxSize),
			preview.WithWorkers(cfg.Preview.Workers),
			preview.WithCacheEntries(cfg.Preview.CacheEntries),
			preview.WithLogger(log),
		)
	}

	app := handler.New(handler.Deps{
		Clock:          clock,
		Lister:         listing.NewLister(listerOpts...),
		BaseDir:        cfg.Share.BaseDir,
		StaticDir:      cfg.StaticDir(),
		CountDownloads: cfg.Idle.CountDownloads,
		Preview:        thumbs,
		Metrics:        metrics,
		Logger:         log,
	})

	router := httpserver.NewRouter(httpserver.RouterConfig{
		App:           app,
		Metrics:       metrics,
		ExposeMetrics: cfg.Metrics.Enabled,
		RateLimit:     cfg.Server.RateLimit,
		RateBurst:     cfg.Server.RateBurst,
		Logger:        log,
	})

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hooks := shutdown.NewHandler(shutdownTimeout)

	t := &serveTask{
		cfg:      cfg,
		router:   router,
		logger:   log,
		hooks:    hooks,
		onListen: opts.OnListen,
		done:     make(chan struct{}),
	}

	// Registered first so it runs last, after the server is closed.
	hooks.OnShutdown(func(hctx context.Context) error {
		select {
		case <-t.done:
			return nil
		case <-hctx.Done():
			return fmt.Errorf("serving task did not stop: %w", hctx.Err())
		}
	})
	go t.run(serveCtx)

	wd := watchdog.New(clock, cancel,
		watchdog.WithInterval(cfg.Idle.PollInterval),
		watchdog.WithThreshold(cfg.Idle.Timeout),
		watchdog.WithLogger(log),
		watchdog.WithObserver(func(idle time.Duration, state watchdog.State) {
			metrics.SetIdle(idle.Seconds(), state == watchdog.StateShuttingDown)
		}),
	)
	reason := wd.Run(ctx, t.done)

	if err := hooks.Run(); err != nil {
		log.Error("shutdown hooks failed", "error", err)
	}

	// The hook above has waited for the task, or given up; only read the
	// error once the task is known to be finished.
	var serveErr error
	select {
	case <-t.done:
		serveErr = t.err
	default:
	}

	log.Info("deckshare-server stopped", "reason", string(reason))
	return Result{Reason: reason, ServeErr: serveErr}
}

// serveTask loads the key pair and serves HTTPS until its context ends.
type serveTask struct {
	cfg      *config.ServerConfig
	router   http.Handler
	logger   *slog.Logger
	hooks    *shutdown.Handler
	onListen func(net.Addr)

	done chan struct{}
	err  error
}

func (t *serveTask) run(ctx context.Context) {
	defer close(t.done)
	t.err = t.serve(ctx)
	if t.err != nil {
		t.logger.Error("server stopped with error", "error", t.err)
	}
}

func (t *serveTask) serve(ctx context.Context) error {
	certFile, keyFile := t.cfg.CertPaths()

	certs, err := tlsroots.NewWatcher(certFile, keyFile, tlsroots.WithLogger(t.logger))
	if err != nil {
		return err
	}
	if t.cfg.TLS.Watch {
		go func() {
			if err := certs.Run(ctx); err != nil {
				t.logger.Warn("certificate watcher stopped", "error", err)
			}
		}()
	}
	t.hooks.OnShutdown(func(context.Context) error {
		certs.Stop()
		return nil
	})

	srv := httpserver.New(t.cfg.Addr(), t.router,
		httpserver.WithTLSConfig(certs.TLSConfig()),
		httpserver.WithTimeouts(t.cfg.Server.ReadTimeout, t.cfg.Server.WriteTimeout, t.cfg.Server.IdleTimeout),
		httpserver.WithLogger(t.logger),
	)
	t.hooks.OnShutdown(func(context.Context) error {
		return srv.Close()
	})

	if t.onListen != nil {
		go func() {
			select {
			case <-srv.Ready():
				t.onListen(srv.Addr())
			case <-ctx.Done():
			}
		}()
	}

	return srv.Serve(ctx)
}

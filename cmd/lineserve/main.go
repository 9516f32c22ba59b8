// Command lineserve serves individual lines of a text file over HTTP.
//
// Usage:
//
//	lineserve [-config lineserve.yaml] [-addr :8080] [-cache-size N] [FILE]
//
// FILE overrides file.path from the configuration file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/lineserve/auth"
	"github.com/jonwraymond/lineserve/config"
	"github.com/jonwraymond/lineserve/health"
	"github.com/jonwraymond/lineserve/lines"
	"github.com/jonwraymond/lineserve/observe"
	"github.com/jonwraymond/lineserve/resilience"
	"github.com/jonwraymond/lineserve/server"
)

const defaultShutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "lineserve: %v\n", err)
		os.Exit(1)
	}
}

// run starts the server and blocks until ctx is cancelled or the listener
// fails. When ready is non-nil it receives the bound address once the
// server accepts connections.
func run(ctx context.Context, args []string, stderr io.Writer, ready chan<- string) error {
	fs := flag.NewFlagSet("lineserve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML configuration file")
	addr := fs.String("addr", "", "listen address (overrides server.addr)")
	cacheSize := fs.Int("cache-size", 0, "result cache capacity (overrides cache.size)")
	logLevel := fs.String("log-level", "", "debug|info|warn|error (overrides observe.logging.level)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one FILE argument, got %d", fs.NArg())
	}

	cfg, err := config.Load(ctx, *configPath, config.Overrides{
		FilePath:  fs.Arg(0),
		CacheSize: *cacheSize,
		Addr:      *addr,
		LogLevel:  *logLevel,
	})
	if err != nil {
		return err
	}

	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return fmt.Errorf("observer: %w", err)
	}
	logger := obs.Logger()
	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	base, checker, err := newBaseLookuper(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}

	mw, err := lines.NewCache(cfg.Cache, metrics)
	if err != nil {
		return err
	}
	bh := resilience.NewBulkhead(resilience.BulkheadConfig{
		MaxConcurrent: cfg.Server.MaxConcurrent,
		MaxWait:       cfg.Server.MaxWait,
	})
	lookuper := lines.Instrument(
		lines.Cached(lines.Limit(base, bh), mw),
		observe.NewTracer(obs.Tracer()),
		metrics,
		logger,
		cfg.File.Path,
	)

	agg := health.NewAggregator()
	agg.Register(checker)

	var metricsHandler http.Handler
	if cfg.Observe.PrometheusEnabled() {
		metricsHandler = promhttp.Handler()
	}

	srv, err := server.New(server.Options{
		Lookuper:      lookuper,
		Authenticator: auth.New(cfg.Auth),
		Health:        agg,
		Metrics:       metricsHandler,
		Logger:        logger,
		UTF8:          server.IsUTF8(cfg.Server.Charset),
	})
	if err != nil {
		return err
	}

	httpSrv := server.NewHTTPServer(server.HTTPConfig{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, srv.Handler())

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "starting server",
			observe.F("addr", ln.Addr().String()),
			observe.F("file.path", cfg.File.Path),
			observe.F("strategy", cfg.File.Strategy),
			observe.F("cache.size", cfg.Cache.Capacity),
			observe.F("auth", cfg.Auth.Enabled()),
		)
		if ready != nil {
			ready <- ln.Addr().String()
		}
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "shutting down")

		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := httpSrv.Shutdown(shutdownCtx)
		if serr := obs.Shutdown(shutdownCtx); serr != nil {
			err = errors.Join(err, serr)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	stats := mw.Stats()
	logger.Info(context.Background(), "server stopped",
		observe.F("cache.hits", stats.Hits),
		observe.F("cache.misses", stats.Misses),
		observe.F("cache.evictions", stats.Evictions),
	)
	return nil
}

// newBaseLookuper builds the uncached lookup source for the configured
// strategy, together with a health checker for the served file. An index
// build failure is returned as an error and must stop startup.
func newBaseLookuper(ctx context.Context, cfg *config.Config, logger observe.Logger, metrics observe.Metrics) (lines.Lookuper, health.Checker, error) {
	if cfg.File.Strategy == config.StrategyScan {
		info, err := os.Stat(cfg.File.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", lines.ErrIndexBuild, err)
		}
		return lines.NewScanner(cfg.File.Path, logger), lines.NewFileChecker(cfg.File.Path, info.Size()), nil
	}

	ix, err := lines.Build(ctx, cfg.File.Path, lines.BuildConfig{Logger: logger, Metrics: metrics})
	if err != nil {
		return nil, nil, err
	}
	return lines.NewReader(ix, logger), lines.NewIndexChecker(ix), nil
}

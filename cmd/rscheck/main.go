// Command rscheck runs the RSCheck health-probing daemon: it loads a YAML
// configuration, starts one goroutine per configured check, waits for the
// first all-healthy snapshot (or times out), then serves the status
// endpoint until signalled to stop. A fatal configuration error exits
// non-zero before anything starts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rscheck/rscheck/internal/aggregator"
	"github.com/rscheck/rscheck/internal/config"
	"github.com/rscheck/rscheck/internal/httpapi"
	"github.com/rscheck/rscheck/internal/logging"
	"github.com/rscheck/rscheck/internal/watchdog"
)

const versionString = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(versionString)
		return 0
	}

	path := flag.Arg(0)
	if path == "" {
		path = os.Getenv("RSCHECK_CONFIG")
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: rscheck <config-file>")
		return 2
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rscheck: %v\n", err)
		return 1
	}

	logger := logging.Configure(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agg := aggregator.New(cfg.Checks, cfg.HTTP.QueryCacheTTL, cfg.HTTP.QueryTimeout, cfg.HTTP.ErrorMessage, logger)
	agg.Start(ctx, cfg.Checks)
	defer agg.Stop()

	if cfg.Watchdog.WaitStatusTimeout > 0 {
		if !waitForHealthy(ctx, agg, cfg.Watchdog.WaitStatusInterval, cfg.Watchdog.WaitStatusTimeout) {
			logger.Warn("checks did not become healthy before startup deadline, starting anyway")
		}
	}

	if err := watchdog.Ready(); err != nil {
		logger.Debug("systemd READY notification failed", "cause", err)
	}
	wd := watchdog.New(cfg.Watchdog.WaitStatusInterval/2, logger)
	go wd.Run(ctx)

	server := httpapi.New(agg, httpapi.Options{
		Address:      cfg.HTTP.Address,
		Location:     cfg.HTTP.Location,
		KeepAlive:    cfg.HTTP.KeepAlive,
		ErrorMessage: cfg.HTTP.ErrorMessage,
	}, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErr:
		if err != nil {
			logger.Error("http server failed", "cause", err)
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "cause", err)
	}
	return 0
}

// waitForHealthy polls AllHealthy every interval until it reports true or
// timeout elapses, gating startup readiness on the check runners rather
// than a fixed sleep.
func waitForHealthy(ctx context.Context, agg *aggregator.Aggregator, interval, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if agg.AllHealthy("", nil) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

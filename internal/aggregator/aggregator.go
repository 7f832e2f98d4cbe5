// Package aggregator implements Aggregator, the top-level façade the HTTP
// layer talks to. It owns the ResultStore and QueryCache, spawns the
// CheckRunners at startup, and composes a final verdict from check
// outcomes plus an on-demand query outcome.
//
// A single struct holds every dependency a request handler needs,
// constructed once at startup and passed by reference rather than
// through package-level mutable statics.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rscheck/rscheck/internal/config"
	"github.com/rscheck/rscheck/internal/model"
	"github.com/rscheck/rscheck/internal/probe"
	"github.com/rscheck/rscheck/internal/querycache"
	"github.com/rscheck/rscheck/internal/runner"
	"github.com/rscheck/rscheck/internal/store"
)

// Aggregator is the core engine's façade: Snapshot/RunQuery/AllHealthy are
// the only operations the HTTP layer needs.
type Aggregator struct {
	store *store.ResultStore
	cache *querycache.Cache

	queryCacheTTL time.Duration
	queryTimeout  time.Duration
	errorMessage  bool

	logger *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	runnerWG sync.WaitGroup
}

// New constructs an Aggregator over checks, wiring a Maintenance probe (if
// configured) to the shared QueryCache and queryCacheTTL, the single
// process-wide value both the sweep and the HTTP query path use.
func New(checks []config.CheckSpec, queryCacheTTL, queryTimeout time.Duration, errorMessage bool, logger *slog.Logger) *Aggregator {
	s := store.New()
	s.Prepopulate(namesOf(checks))
	cache := querycache.New()

	for _, c := range checks {
		if m, ok := c.Probe.(*probe.MaintenanceProbe); ok {
			m.Bind(cache, queryCacheTTL)
		}
	}

	return &Aggregator{
		store:         s,
		cache:         cache,
		queryCacheTTL: queryCacheTTL,
		queryTimeout:  queryTimeout,
		errorMessage:  errorMessage,
		logger:        logger,
	}
}

func namesOf(checks []config.CheckSpec) []string {
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = c.Name
	}
	return names
}

// Start spawns one CheckRunner per check, each running until Stop is
// called. Safe to call once.
func (a *Aggregator) Start(ctx context.Context, checks []config.CheckSpec) {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	for _, c := range checks {
		r := runner.New(c.Name, c.Probe, c.Interval, c.Timeout, c.ErrorMessage, c.StatusMessage, a.store, a.logger)
		a.runnerWG.Add(1)
		go func() {
			defer a.runnerWG.Done()
			r.Run(ctx)
		}()
	}
}

// Stop cancels every CheckRunner and waits for them to exit.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	a.runnerWG.Wait()
}

// RunQuery consults the QueryCache; on a hit it returns the cached
// outcome, on a miss it synchronously evaluates the query within
// queryTimeout and stores the result.
func (a *Aggregator) RunQuery(queryKey string, args model.QueryArgs) model.Outcome {
	if outcome, ok := a.cache.Lookup(queryKey, a.queryCacheTTL); ok {
		return outcome
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.queryTimeout)
	defer cancel()

	outcome := a.evaluateQuery(ctx, args)
	a.cache.Store(queryKey, outcome)
	return outcome
}

// evaluateQuery validates and runs the on-demand query described by args.
func (a *Aggregator) evaluateQuery(ctx context.Context, args model.QueryArgs) model.Outcome {
	var virtualIf, virtualIP string
	var haveIf, haveIP bool

	for _, arg := range args {
		switch arg.Name {
		case model.ArgExclude:
			// data for Snapshot's exclusion set, not for query evaluation.
		case model.ArgVirtualIf:
			virtualIf, haveIf = arg.Value, true
		case model.ArgVirtualIP:
			virtualIP, haveIP = arg.Value, true
		default:
			return a.queryError(fmt.Errorf("invalid check: unrecognized argument %q", arg.Name))
		}
	}

	if !haveIf && !haveIP {
		return model.OK("")
	}
	if haveIf != haveIP {
		return a.queryError(fmt.Errorf("invalid check: virtual_if and virtual_ip must both be present"))
	}

	if err := a.checkVirtualInterface(ctx, virtualIf, virtualIP); err != nil {
		return a.queryError(err)
	}
	return model.OK("")
}

// checkVirtualInterface verifies the interface is UP and RUNNING,
// rp_filter is disabled on it, and every listed IP is bound to it.
func (a *Aggregator) checkVirtualInterface(ctx context.Context, ifName, ipList string) error {
	if err := probe.LinkUpRunning(ifName); err != nil {
		return err
	}

	rpFilter := probe.ReadSysctl(fmt.Sprintf("net.ipv4.conf.%s.rp_filter", ifName))
	if rpFilter != "0" {
		return fmt.Errorf("rp_filter not disabled on %s (got %q)", ifName, rpFilter)
	}

	bound, err := probe.LinkAddresses(ifName)
	if err != nil {
		return fmt.Errorf("interface %s: %w", ifName, err)
	}
	boundSet := make(map[string]struct{}, len(bound))
	for _, ip := range bound {
		boundSet[ip] = struct{}{}
	}

	for _, ip := range splitNonEmpty(ipList, ",") {
		if _, ok := boundSet[ip]; !ok {
			return fmt.Errorf("%s not bound to %s", ip, ifName)
		}
	}
	return nil
}

func (a *Aggregator) queryError(err error) model.Outcome {
	if a.logger != nil {
		a.logger.Error("query failed", "cause", err)
	}
	if a.errorMessage {
		return model.Err(err.Error())
	}
	return model.Err("")
}

// Snapshot composes the query outcome (if one is cached for queryKey) and
// every check outcome whose name is not in exclude into a final verdict.
func (a *Aggregator) Snapshot(queryKey string, exclude map[string]struct{}) (healthy bool, message string) {
	queryOutcome, haveQuery := a.cache.Lookup(queryKey, a.queryCacheTTL)
	checks := a.store.Snapshot(exclude)

	healthy = !haveQuery || queryOutcome.Healthy()
	if healthy {
		for _, outcome := range checks {
			if !outcome.Healthy() {
				healthy = false
				break
			}
		}
	}

	return healthy, a.renderMessage(healthy, queryOutcome, haveQuery, checks)
}

// renderMessage joins every outcome message on the winning side, sorted
// by check name with the query message first when present; falls back to
// the canonical "true"/"false" when every message on that side is empty.
func (a *Aggregator) renderMessage(healthy bool, queryOutcome model.Outcome, haveQuery bool, checks map[string]model.Outcome) string {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	if haveQuery && queryOutcome.Healthy() == healthy && queryOutcome.Message != "" {
		parts = append(parts, queryOutcome.Message)
	}
	for _, name := range names {
		outcome := checks[name]
		if outcome.Healthy() != healthy {
			continue
		}
		if outcome.Message != "" {
			parts = append(parts, outcome.Message)
		}
	}

	if len(parts) == 0 {
		if healthy {
			return "true"
		}
		return "false"
	}
	return strings.Join(parts, "; ")
}

// AllHealthy is the OK-branch predicate of Snapshot, used by the
// wait-for-first-healthy startup gate.
func (a *Aggregator) AllHealthy(queryKey string, exclude map[string]struct{}) bool {
	healthy, _ := a.Snapshot(queryKey, exclude)
	return healthy
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

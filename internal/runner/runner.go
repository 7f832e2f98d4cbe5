// Package runner implements CheckRunner: the goroutine that drives one
// Probe on a fixed cadence and publishes its outcome into the ResultStore.
// Each runner is isolated: a panicking or failing probe never stops its
// own loop or any other check's.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rscheck/rscheck/internal/model"
	"github.com/rscheck/rscheck/internal/probe"
	"github.com/rscheck/rscheck/internal/store"
)

// CheckRunner supervises one Probe on a fixed interval, translating its
// result into an Outcome and writing it to the ResultStore. Probe panics
// are recovered at this boundary and recorded as an ERROR outcome; the
// loop always continues.
type CheckRunner struct {
	Name          string
	Probe         probe.Probe
	Interval      time.Duration
	Timeout       time.Duration
	ErrorMessage  bool
	StatusMessage bool

	Store  *store.ResultStore
	Logger *slog.Logger
}

// New builds a CheckRunner from a resolved check specification's fields.
func New(name string, p probe.Probe, interval, timeout time.Duration, errorMessage, statusMessage bool, s *store.ResultStore, logger *slog.Logger) *CheckRunner {
	return &CheckRunner{
		Name:          name,
		Probe:         p,
		Interval:      interval,
		Timeout:       timeout,
		ErrorMessage:  errorMessage,
		StatusMessage: statusMessage,
		Store:         s,
		Logger:        logger,
	}
}

// Run executes cycles until ctx is done. Interval is measured as
// sleep-between-cycles, not fixed-rate: the next cycle starts Interval
// after the previous one finished, so a single check name never has two
// cycles in flight at once.
func (r *CheckRunner) Run(ctx context.Context) {
	for {
		r.runOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.Interval):
		}
	}
}

func (r *CheckRunner) runOnce(ctx context.Context) {
	outcome := r.execute(ctx)
	r.Store.Update(r.Name, outcome)
}

// execute runs a single probe cycle, recovering from panics and
// translating both the ordinary and the exceptional path into an
// Outcome.
func (r *CheckRunner) execute(ctx context.Context) (outcome model.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = r.errorOutcome(fmt.Errorf("panic: %v", rec))
			r.logError(fmt.Errorf("panic: %v", rec))
		}
	}()

	checkCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	message, err := r.Probe.Execute(checkCtx)
	if err != nil {
		r.logError(err)
		return r.errorOutcome(err)
	}
	if r.StatusMessage {
		return model.OK(message)
	}
	return model.OK("")
}

func (r *CheckRunner) errorOutcome(err error) model.Outcome {
	if r.ErrorMessage {
		return model.Err(fmt.Sprintf("%s error: %s", r.Name, err))
	}
	return model.Err("")
}

func (r *CheckRunner) logError(err error) {
	if r.Logger == nil {
		return
	}
	r.Logger.Error("check failed", "check", r.Name, "cause", err)
}

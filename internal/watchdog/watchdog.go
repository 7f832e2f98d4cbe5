// Package watchdog notifies systemd of startup completion and pings its
// watchdog timer, so a unit configured with Type=notify and WatchdogSec=
// gets killed and restarted if the process stops making progress.
//
package watchdog

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier periodically pings the systemd watchdog.
type Notifier struct {
	interval time.Duration
	logger   *slog.Logger
}

// New sets the watchdog ping interval to half the timeout systemd reports
// through WATCHDOG_USEC. It returns nil, so that no pings are sent, when the
// watchdog is not enabled for this process (for example WATCHDOG_USEC is
// unset); no default timeout is assumed in that case. fallback is used
// only when half the reported timeout is not positive.
func New(fallback time.Duration, logger *slog.Logger) *Notifier {
	usec, enabled, err := daemon.SdWatchdogEnabled(false)
	if err != nil || !enabled {
		return nil
	}

	interval := usec / 2
	if interval <= 0 {
		interval = fallback
	}
	return &Notifier{interval: interval, logger: logger}
}

// Ready sends READY=1, telling systemd that startup succeeded.
func Ready() error {
	_, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	return err
}

// Run pings WATCHDOG=1 at n.interval until ctx is cancelled. Intended to
// run in its own goroutine for the lifetime of the process.
func (n *Notifier) Run(ctx context.Context) {
	if n == nil {
		return
	}

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil && n.logger != nil {
				n.logger.Error("watchdog notify failed", "cause", err)
			}
		}
	}
}

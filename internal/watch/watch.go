// Package watch runs the periodic certificate check and raises alerts.
package watch

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/internal/healthcheck"
	"github.com/TykTechnologies/certexpiry/internal/hostconfig"
	"github.com/TykTechnologies/certexpiry/internal/notify"
)

// Watcher checks a fixed list of hosts on every Run.
type Watcher struct {
	checker   *checker.Checker
	hosts     []hostconfig.HostSpec
	alerter   *notify.Alerter
	heartbeat *healthcheck.Heartbeat
	logger    *logrus.Entry
}

// New returns a Watcher. alerter and heartbeat may be nil.
func New(c *checker.Checker, hosts []hostconfig.HostSpec, alerter *notify.Alerter, heartbeat *healthcheck.Heartbeat, logger *logrus.Entry) *Watcher {
	return &Watcher{
		checker:   c,
		hosts:     hosts,
		alerter:   alerter,
		heartbeat: heartbeat,
		logger:    logger.WithField("prefix", "watch"),
	}
}

// Run performs one round. Host failures are reported through the alerter
// and never fail the round.
func (w *Watcher) Run(ctx context.Context) error {
	outcomes := w.checker.CheckEach(ctx, w.hosts)
	if err := ctx.Err(); err != nil {
		return err
	}

	results := outcomes.Results()
	failed := outcomes.Failed()
	alerting := checker.InAlertWindow(results)

	for _, r := range alerting {
		w.logger.WithField("host", r.Host.Address()).
			WithField("days", r.Expiry.Days).
			WithField("expired", r.Expiry.IsExpired).
			Warn("Certificate in alert window")
	}

	var notified int
	if w.alerter != nil {
		notified = w.alerter.Alert(ctx, results)
		notified += w.alerter.AlertFailures(ctx, failed)
	}

	if w.heartbeat != nil {
		w.heartbeat.Beat()
	}

	w.logger.WithField("checked", len(outcomes)).
		WithField("failed", len(failed)).
		WithField("alerting", len(alerting)).
		WithField("notified", notified).
		Info("Watch round completed")
	return nil
}

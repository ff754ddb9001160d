package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/internal/cooldown"
)

// Alerter notifies about certificates in their alert window at most once
// per cooldown period for each host and certificate.
type Alerter struct {
	notifier Notifier
	cooldown cooldown.Cache
	period   time.Duration
	logger   *logrus.Entry
	now      func() time.Time
}

// NewAlerter returns an Alerter sending through notifier.
func NewAlerter(notifier Notifier, cache cooldown.Cache, period time.Duration, logger *logrus.Entry) *Alerter {
	return &Alerter{
		notifier: notifier,
		cooldown: cache,
		period:   period,
		logger:   logger,
		now:      time.Now,
	}
}

// failedFingerprint stands in for the certificate when keying failure cooldowns.
const failedFingerprint = "check-failed"

// Alert sends one notification per result in its alert window whose
// cooldown is not active. It returns the number of notifications sent.
// Delivery and cooldown errors are logged and do not stop the loop.
func (a *Alerter) Alert(ctx context.Context, results []checker.CheckResult) int {
	sent := 0
	for _, result := range checker.InAlertWindow(results) {
		if ctx.Err() != nil {
			break
		}

		logger := a.logger.WithField("host", result.Host.Address()).WithField("days", result.Expiry.Days)
		key := cooldown.Key(result.Host.Address(), result.Fingerprint)

		active, err := a.cooldown.IsActive(ctx, key)
		if err != nil {
			logger.WithError(err).Error("Couldn't read alert cooldown")
			continue
		}
		if active {
			logger.Debug("Alert cooldown active, skipping")
			continue
		}

		if a.send(ctx, logger, key, NewPayload(result, a.now())) {
			sent++
		}
	}
	return sent
}

// AlertFailures sends one notification per failed outcome, with the same
// cooldown handling as Alert.
func (a *Alerter) AlertFailures(ctx context.Context, outcomes checker.Outcomes) int {
	sent := 0
	for _, outcome := range outcomes.Failed() {
		if ctx.Err() != nil {
			break
		}

		logger := a.logger.WithField("host", outcome.Host.Address())
		key := cooldown.Key(outcome.Host.Address(), failedFingerprint)

		active, err := a.cooldown.IsActive(ctx, key)
		if err != nil {
			logger.WithError(err).Error("Couldn't read alert cooldown")
			continue
		}
		if active {
			continue
		}

		if a.send(ctx, logger, key, NewFailurePayload(outcome, a.now())) {
			sent++
		}
	}
	return sent
}

func (a *Alerter) send(ctx context.Context, logger *logrus.Entry, key string, payload Payload) bool {
	if err := a.notifier.Notify(ctx, payload); err != nil {
		logger.WithError(err).Error("Couldn't send alert")
		return false
	}

	if err := a.cooldown.Set(ctx, key, a.period); err != nil {
		logger.WithError(err).Error("Couldn't store alert cooldown")
	}
	return true
}

package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/internal/cooldown"
	"github.com/TykTechnologies/certexpiry/internal/event"
)

type recordingNotifier struct {
	payloads []Payload
	err      error
}

func (r *recordingNotifier) Notify(_ context.Context, payload Payload) error {
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, payload)
	return nil
}

func newTestAlerter(t *testing.T, notifier Notifier) *Alerter {
	t.Helper()

	cache, err := cooldown.NewLocal(16)
	require.NoError(t, err)

	logger, _ := logrustest.NewNullLogger()
	a := NewAlerter(notifier, cache, time.Hour, logger.WithField("prefix", "alerter"))
	a.now = func() time.Time { return testNow }
	return a
}

func TestAlerter_Alert(t *testing.T) {
	notifier := &recordingNotifier{}
	a := newTestAlerter(t, notifier)

	results := []checker.CheckResult{
		testResult("fine.example.com", 90, 30),
		testResult("soon.example.com", 10, 30),
		testResult("expired.example.com", -2, 30),
	}

	assert.Equal(t, 2, a.Alert(context.Background(), results))
	require.Len(t, notifier.payloads, 2)
	assert.Equal(t, "soon.example.com", notifier.payloads[0].Hostname)
	assert.Equal(t, "expired.example.com", notifier.payloads[1].Hostname)

	// Cooldown suppresses the second round.
	assert.Equal(t, 0, a.Alert(context.Background(), results))
	assert.Len(t, notifier.payloads, 2)

	// A renewed certificate has a new fingerprint and alerts again.
	renewed := testResult("soon.example.com", 10, 30)
	renewed.Fingerprint = "renewed"
	assert.Equal(t, 1, a.Alert(context.Background(), []checker.CheckResult{renewed}))
}

func TestAlerter_DeliveryFailureKeepsNoCooldown(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("unreachable")}
	a := newTestAlerter(t, notifier)

	results := []checker.CheckResult{testResult("soon.example.com", 10, 30)}
	assert.Equal(t, 0, a.Alert(context.Background(), results))

	notifier.err = nil
	assert.Equal(t, 1, a.Alert(context.Background(), results))
}

func TestAlerter_CanceledContext(t *testing.T) {
	notifier := &recordingNotifier{}
	a := newTestAlerter(t, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, a.Alert(ctx, []checker.CheckResult{testResult("soon.example.com", 10, 30)}))
	assert.Empty(t, notifier.payloads)
}

func TestAlerter_AlertFailures(t *testing.T) {
	notifier := &recordingNotifier{}
	a := newTestAlerter(t, notifier)

	outcomes := checker.Outcomes{
		{Index: 0, Host: testResult("ok.example.com", 90, 30).Host, Result: &checker.CheckResult{}},
		{Index: 1, Host: testResult("down.example.com", 0, 30).Host, Err: errors.New("connection refused")},
	}

	assert.Equal(t, 1, a.AlertFailures(context.Background(), outcomes))
	require.Len(t, notifier.payloads, 1)
	assert.Equal(t, event.CertificateCheckFailed, notifier.payloads[0].Event)
	assert.Equal(t, "down.example.com", notifier.payloads[0].Hostname)
	assert.Contains(t, notifier.payloads[0].Message, "connection refused")

	assert.Equal(t, 0, a.AlertFailures(context.Background(), outcomes))
}

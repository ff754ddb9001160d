package watch

import (
	"context"
	"crypto/x509"
	"crypto/x509/pkix"
	"syscall"
	"testing"
	"time"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/checker/mock"
	"github.com/TykTechnologies/certexpiry/config"
	"github.com/TykTechnologies/certexpiry/internal/cooldown"
	"github.com/TykTechnologies/certexpiry/internal/expiry"
	"github.com/TykTechnologies/certexpiry/internal/healthcheck"
	"github.com/TykTechnologies/certexpiry/internal/hostconfig"
	"github.com/TykTechnologies/certexpiry/internal/notify"
)

type recordingNotifier struct {
	payloads []notify.Payload
}

func (r *recordingNotifier) Notify(_ context.Context, payload notify.Payload) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

func TestWatcher_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	connector := mock.NewMockConnector(ctrl)

	now := time.Now()
	certs := map[string]*x509.Certificate{
		"fine.example.com": {Subject: pkix.Name{CommonName: "fine"}, NotBefore: now.Add(-expiry.Day), NotAfter: now.Add(90 * expiry.Day), Raw: []byte("fine")},
		"soon.example.com": {Subject: pkix.Name{CommonName: "soon"}, NotBefore: now.Add(-expiry.Day), NotAfter: now.Add(5 * expiry.Day), Raw: []byte("soon")},
	}
	connector.EXPECT().Connect(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, host hostconfig.ResolvedHost) (*x509.Certificate, error) {
			if cert, ok := certs[host.Hostname]; ok {
				return cert, nil
			}
			return nil, syscall.ECONNREFUSED
		},
	).Times(6)

	logger, hook := logrustest.NewNullLogger()
	entry := logger.WithField("prefix", "test")

	c := checker.New(config.DefaultGlobal(), checker.WithConnector(connector), checker.WithLogger(entry))

	cache, err := cooldown.NewLocal(16)
	require.NoError(t, err)
	notifier := &recordingNotifier{}
	alerter := notify.NewAlerter(notifier, cache, time.Hour, entry)
	heartbeat := healthcheck.NewHeartbeat("watch", time.Hour)

	w := New(c, []hostconfig.HostSpec{
		hostconfig.Host("fine.example.com"),
		hostconfig.Host("soon.example.com"),
		hostconfig.Host("down.example.com"),
	}, alerter, heartbeat, entry)

	require.NoError(t, w.Run(context.Background()))
	require.Len(t, notifier.payloads, 2)
	assert.Equal(t, "soon.example.com", notifier.payloads[0].Hostname)
	assert.Equal(t, "down.example.com", notifier.payloads[1].Hostname)
	assert.NoError(t, heartbeat.Result(context.Background()))

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "Watch round completed", last.Message)
	assert.Equal(t, 3, last.Data["checked"])
	assert.Equal(t, 1, last.Data["failed"])
	assert.Equal(t, 1, last.Data["alerting"])
	assert.Equal(t, 2, last.Data["notified"])

	// Second round is suppressed by the cooldowns.
	require.NoError(t, w.Run(context.Background()))
	assert.Len(t, notifier.payloads, 2)
}

func TestWatcher_RunCanceled(t *testing.T) {
	c := checker.New(config.DefaultGlobal(), checker.WithConnector(mock.NewMockConnector(gomock.NewController(t))))
	logger, _ := logrustest.NewNullLogger()
	w := New(c, nil, nil, nil, logger.WithField("prefix", "test"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
	assert.NoError(t, w.Run(context.Background()))
}

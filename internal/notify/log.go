package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes alerts to the log. It is used when no webhook is configured.
type LogNotifier struct {
	logger *logrus.Entry
}

// NewLogNotifier returns a LogNotifier writing to logger.
func NewLogNotifier(logger *logrus.Entry) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, p Payload) error {
	n.logger.WithField("event", p.Event).
		WithField("id", p.ID).
		WithField("host", p.Hostname).
		WithField("port", p.Port).
		WithField("days", p.DaysRemaining).
		Warn(p.Message)
	return nil
}

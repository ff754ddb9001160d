// Package notify delivers certificate alerts to external receivers.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TykTechnologies/certexpiry/checker"
	"github.com/TykTechnologies/certexpiry/config"
	"github.com/TykTechnologies/certexpiry/internal/event"
)

// Payload is the body posted for one alert.
type Payload struct {
	Event         event.Event `json:"event"`
	ID            string      `json:"id"`
	Message       string      `json:"message"`
	Hostname      string      `json:"hostname"`
	Port          int         `json:"port"`
	CommonName    string      `json:"common_name"`
	ExpiresAt     time.Time   `json:"expires_at"`
	DaysRemaining int64       `json:"days_remaining"`
	IsExpired     bool        `json:"is_expired"`
	Timestamp     time.Time   `json:"timestamp"`
}

// NewPayload builds the alert for a checked host.
func NewPayload(result checker.CheckResult, now time.Time) Payload {
	ev := event.ForExpiry(result.Expiry.IsExpired)

	return Payload{
		Event:         ev,
		ID:            uuid.NewString(),
		Message:       fmt.Sprintf("%s: %s (%d days remaining)", event.String(ev), result.Host.Address(), result.Expiry.Days),
		Hostname:      result.Host.Hostname,
		Port:          result.Host.Port,
		CommonName:    result.Details.Subject.CommonName,
		ExpiresAt:     result.ValidTo,
		DaysRemaining: result.Expiry.Days,
		IsExpired:     result.Expiry.IsExpired,
		Timestamp:     now.UTC(),
	}
}

// NewFailurePayload builds the alert for a host that could not be checked.
func NewFailurePayload(outcome checker.Outcome, now time.Time) Payload {
	return Payload{
		Event:     event.CertificateCheckFailed,
		ID:        uuid.NewString(),
		Message:   fmt.Sprintf("%s: %v", event.String(event.CertificateCheckFailed), outcome.Err),
		Hostname:  outcome.Host.Hostname,
		Port:      outcome.Host.Port,
		Timestamp: now.UTC(),
	}
}

// Notifier sends alerts.
type Notifier interface {
	Notify(ctx context.Context, payload Payload) error
}

// Webhook posts alerts as JSON, retrying server errors with exponential backoff.
type Webhook struct {
	url        string
	headers    map[string]string
	client     *http.Client
	maxElapsed time.Duration
	logger     *logrus.Entry

	newBackOff func() backoff.BackOff
}

// NewWebhook returns a Webhook for cfg.
func NewWebhook(cfg config.WebhookConfig, logger *logrus.Entry) *Webhook {
	w := &Webhook{
		url:        cfg.URL,
		headers:    cfg.Headers,
		client:     &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		maxElapsed: time.Duration(cfg.MaxElapsedSeconds) * time.Second,
		logger:     logger,
	}
	w.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = w.maxElapsed
		return b
	}
	return w
}

// Notify delivers payload. 4xx responses are not retried.
func (w *Webhook) Notify(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	attempt := 0
	op := func() error {
		attempt++
		return w.post(ctx, body)
	}

	notify := func(err error, wait time.Duration) {
		w.logger.WithError(err).
			WithField("attempt", attempt).
			WithField("retry_in", wait).
			Warn("Webhook delivery failed, retrying")
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(w.newBackOff(), ctx), notify); err != nil {
		return fmt.Errorf("webhook delivery of %s failed: %w", payload.ID, err)
	}

	w.logger.WithField("event", payload.Event).
		WithField("host", payload.Hostname).
		WithField("id", payload.ID).
		Info("Webhook delivered")
	return nil
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return backoff.Permanent(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
	return nil
}

// Package checker reports the expiry status of the certificates served by
// a set of TLS hosts.
package checker

import (
	"context"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/TykTechnologies/certexpiry/config"
	"github.com/TykTechnologies/certexpiry/internal/certificate"
	"github.com/TykTechnologies/certexpiry/internal/crypto"
	"github.com/TykTechnologies/certexpiry/internal/errors"
	"github.com/TykTechnologies/certexpiry/internal/expiry"
	"github.com/TykTechnologies/certexpiry/internal/hostconfig"
	logger "github.com/TykTechnologies/certexpiry/log"
)

const (
	tracerName = "github.com/TykTechnologies/certexpiry/checker"
	spanName   = "certexpiry.check_host"
)

var log = logger.Get().WithField("prefix", "checker")

// Checker checks hosts against a fixed configuration. It is safe for
// concurrent use.
type Checker struct {
	config    config.Global
	connector Connector
	now       func() time.Time
	logger    *logrus.Entry
	tracer    trace.Tracer
	cache     *expirable.LRU[string, *x509.Certificate]
}

// Option configures a Checker.
type Option func(*Checker)

// WithConnector replaces the default TLSConnector.
func WithConnector(connector Connector) Option {
	return func(c *Checker) {
		c.connector = connector
	}
}

// WithClock sets the clock used to compute expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for per-host spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Checker) {
		c.tracer = tracer
	}
}

// New returns a Checker for cfg. Unset fields of cfg take their defaults.
func New(cfg config.Global, opts ...Option) *Checker {
	c := &Checker{
		config: cfg.WithDefaults(),
		now:    time.Now,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.connector == nil {
		c.connector = &TLSConnector{
			Timeout:       c.config.Timeout(),
			HandshakeOnly: c.config.HandshakeOnly,
			Logger:        c.logger,
		}
	}

	if ttl := c.config.CacheTTL(); ttl > 0 {
		c.cache = expirable.NewLRU[string, *x509.Certificate](c.config.CacheSize, nil, ttl)
	}

	return c
}

// Config returns the effective configuration.
func (c *Checker) Config() config.Global {
	return c.config
}

// CheckHosts checks every host concurrently and returns the results in
// input order. It fails with the first error and cancels the checks still
// running; no partial results are returned.
func (c *Checker) CheckHosts(ctx context.Context, specs []hostconfig.HostSpec) ([]CheckResult, error) {
	hosts := hostconfig.Resolve(c.config, specs)
	results := make([]CheckResult, len(hosts))

	g, gctx := errgroup.WithContext(ctx)
	c.limit(g)

	for i, host := range hosts {
		g.Go(func() error {
			result, err := c.Check(gctx, host)
			if err != nil {
				return err
			}
			results[i] = *result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CheckEach checks every host concurrently and reports each host's
// success or failure separately, in input order.
func (c *Checker) CheckEach(ctx context.Context, specs []hostconfig.HostSpec) Outcomes {
	hosts := hostconfig.Resolve(c.config, specs)
	outcomes := make(Outcomes, len(hosts))

	var g errgroup.Group
	c.limit(&g)

	for i, host := range hosts {
		g.Go(func() error {
			result, err := c.Check(ctx, host)
			outcomes[i] = Outcome{Index: i, Host: host, Result: result, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

func (c *Checker) limit(g *errgroup.Group) {
	if c.config.MaxConcurrentChecks > 0 {
		g.SetLimit(c.config.MaxConcurrentChecks)
	}
}

// Check checks a single resolved host. Failures are *ConnectionError or
// *MalformedCertificateError.
func (c *Checker) Check(ctx context.Context, host hostconfig.ResolvedHost) (*CheckResult, error) {
	ctx, span := c.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("host", host.Hostname),
		attribute.Int("port", host.Port),
	))
	defer span.End()

	hostLog := c.logger.WithField("host", host.Hostname).WithField("port", host.Port)

	result, err := c.check(ctx, host)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		entry := hostLog.WithError(err)
		var connErr *ConnectionError
		if errors.As(err, &connErr) && connErr.Classification != nil {
			entry = entry.WithField("flag", connErr.Classification.Flag)
		}
		entry.Warn("Certificate check failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("days", result.Expiry.Days),
		attribute.Bool("is_in_alert_window", result.Expiry.IsInAlertWindow),
	)

	hostLog.WithField("days", result.Expiry.Days).
		WithField("alert", result.Expiry.IsInAlertWindow).
		Debug("Certificate checked")

	return result, nil
}

func (c *Checker) check(ctx context.Context, host hostconfig.ResolvedHost) (*CheckResult, error) {
	if host.Hostname == "" {
		cause := fmt.Errorf("%w: %w", errors.ErrInvalidHost, hostconfig.ErrEmptyHostname)
		return nil, newConnectionError(host.Address(), cause)
	}

	cert, err := c.peerCertificate(ctx, host)
	if err != nil {
		return nil, asConnectionError(host.Address(), err)
	}
	if cert == nil {
		return nil, newConnectionError(host.Address(), ErrNoPeerCertificate)
	}

	raw := certificate.FromX509(cert)
	parsed, err := certificate.Parse(raw)
	if err != nil {
		return nil, &MalformedCertificateError{Host: host.Address(), Err: err}
	}

	now := c.now()
	return &CheckResult{
		Host:        host,
		Details:     parsed.Details,
		ValidFrom:   parsed.ValidFrom,
		ValidTo:     parsed.ValidTo,
		Expiry:      expiry.Compute(parsed.ValidTo, now, host.AlertWindowDays),
		Fingerprint: raw.Fingerprint256,
		CheckedAt:   now,
	}, nil
}

func (c *Checker) peerCertificate(ctx context.Context, host hostconfig.ResolvedHost) (*x509.Certificate, error) {
	key := host.Address()
	if c.cache != nil {
		if cert, ok := c.cache.Get(key); ok {
			c.logger.WithField("host", key).WithField("fingerprint", crypto.HexSHA256(cert.Raw)).Debug("Using cached certificate")
			return cert, nil
		}
	}

	cert, err := c.connector.Connect(ctx, host)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && cert != nil {
		c.cache.Add(key, cert)
	}
	return cert, nil
}

package checker

//go:generate mockgen -destination=./mock/connector.go -package mock . Connector

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TykTechnologies/certexpiry/internal/hostconfig"
)

// maxDrainBytes caps how much of a response body is read before closing.
const maxDrainBytes = 64 << 10

// Connector fetches the leaf certificate a host presents.
type Connector interface {
	Connect(ctx context.Context, host hostconfig.ResolvedHost) (*x509.Certificate, error)
}

// TLSConnector performs a single TLS handshake per call with default
// verification, then optionally sends one request over the same session.
type TLSConnector struct {
	// Timeout bounds the whole attempt. Zero leaves it to ctx.
	Timeout time.Duration
	// HandshakeOnly skips the HTTP request.
	HandshakeOnly bool
	// RootCAs replaces the system trust store when set.
	RootCAs *x509.CertPool

	Logger *logrus.Entry
}

// Connect dials host, completes the handshake and returns the peer leaf
// certificate. The certificate is returned even when the request that
// follows the handshake fails. Transport errors are *ConnectionError.
func (c *TLSConnector) Connect(ctx context.Context, host hostconfig.ResolvedHost) (*x509.Certificate, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			ServerName: host.Hostname,
			RootCAs:    c.RootCAs,
			MinVersion: tls.VersionTLS12,
		},
	}

	address := host.Address()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, newConnectionError(address, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, newConnectionError(address, ErrNoPeerCertificate)
	}
	leaf := state.PeerCertificates[0]

	if !c.HandshakeOnly {
		if err := c.request(ctx, conn, host); err != nil {
			c.logger().WithError(err).WithField("host", address).Debug("Request after handshake failed")
		}
	}

	return leaf, nil
}

// request writes one request with Connection: close on conn and reads the
// response status.
func (c *TLSConnector) request(ctx context.Context, conn net.Conn, host hostconfig.ResolvedHost) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, host.Method, "https://"+host.Address()+"/", nil)
	if err != nil {
		return err
	}
	req.Host = host.Hostname
	req.Close = true
	for k, v := range host.Headers {
		req.Header.Set(k, v)
	}

	if err := req.Write(conn); err != nil {
		return err
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	c.logger().WithField("host", host.Address()).WithField("status", resp.StatusCode).Debug("Request after handshake completed")
	return nil
}

func (c *TLSConnector) logger() *logrus.Entry {
	if c.Logger != nil {
		return c.Logger
	}
	return log
}

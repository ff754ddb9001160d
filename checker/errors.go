package checker

import (
	"fmt"

	"github.com/TykTechnologies/certexpiry/internal/errors"
)

// ErrNoPeerCertificate is the cause of a ConnectionError for a handshake
// that completed without a peer certificate.
var ErrNoPeerCertificate = errors.ErrNoPeerCertificate

// ConnectionError reports a host that could not be reached, or whose TLS
// handshake failed. Cause holds the transport error.
type ConnectionError struct {
	Host           string
	Cause          error
	Classification *errors.Classification
}

func newConnectionError(host string, cause error) *ConnectionError {
	return &ConnectionError{
		Host:           host,
		Cause:          cause,
		Classification: errors.Classify(cause, host),
	}
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Host, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// MalformedCertificateError reports a peer certificate whose validity dates
// could not be read. Err is a *certificate.MalformedError.
type MalformedCertificateError struct {
	Host string
	Err  error
}

func (e *MalformedCertificateError) Error() string {
	return fmt.Sprintf("malformed certificate from %s: %v", e.Host, e.Err)
}

func (e *MalformedCertificateError) Unwrap() error {
	return e.Err
}

// asConnectionError returns err unchanged when it already is a
// ConnectionError and wraps it otherwise.
func asConnectionError(host string, err error) *ConnectionError {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		if connErr.Classification == nil {
			connErr.Classification = errors.Classify(connErr.Cause, connErr.Host)
		}
		return connErr
	}
	return newConnectionError(host, err)
}

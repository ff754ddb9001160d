package errors

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// ErrNoPeerCertificate is reported when a handshake completes without the
// peer presenting a certificate.
var ErrNoPeerCertificate = New("no peer certificate presented")

// ErrInvalidHost is reported when a host cannot be dialed because its name
// or port is unusable.
var ErrInvalidHost = New("invalid host")

// Classify inspects a failure from dialing, handshaking or talking to target
// and returns its Classification. It returns nil for a nil error.
//
// Checks run from most to least specific: sentinels, TLS verification,
// syscall errnos, DNS, context, net timeouts, message matching, then UPE.
func Classify(err error, target string) *Classification {
	if err == nil {
		return nil
	}

	switch {
	case Is(err, ErrNoPeerCertificate):
		return newClassification(NPC, "no_peer_certificate", target)
	case Is(err, ErrInvalidHost):
		return newClassification(IHN, "invalid_host", target)
	}

	var urlErr *url.Error
	if As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if As(err, &opErr) {
		err = opErr.Err
	}

	if c := classifyTLS(err, target); c != nil {
		return c
	}
	if c := classifyErrno(err, target); c != nil {
		return c
	}
	if c := classifyDNS(err, target); c != nil {
		return c
	}

	// context.DeadlineExceeded also satisfies net.Error, so it goes first.
	if Is(err, context.DeadlineExceeded) {
		return newClassification(URT, "deadline_exceeded", target)
	}
	if Is(err, context.Canceled) {
		return newClassification(CAN, "check_canceled", target)
	}

	var netErr net.Error
	if As(err, &netErr) && netErr.Timeout() {
		return newClassification(UCT, "io_timeout", target)
	}

	if c := classifyMessage(err, target); c != nil {
		return c
	}

	return newClassification(UPE, "unclassified", target)
}

func classifyTLS(err error, target string) *Classification {
	var invalid x509.CertificateInvalidError
	if As(err, &invalid) {
		if invalid.Reason == x509.Expired {
			c := newClassification(TLE, "certificate_expired", target)
			if invalid.Cert != nil {
				c.WithCert(invalid.Cert.NotAfter, invalid.Cert.Subject.String())
			}
			return c
		}
		return newClassification(TLI, "certificate_invalid", target)
	}

	var hostname x509.HostnameError
	if As(err, &hostname) {
		return newClassification(TLM, "hostname_mismatch", target)
	}

	var unknown x509.UnknownAuthorityError
	if As(err, &unknown) {
		return newClassification(TLI, "unknown_authority", target)
	}

	var roots x509.SystemRootsError
	if As(err, &roots) {
		return newClassification(TLC, "system_roots_unavailable", target)
	}

	var record tls.RecordHeaderError
	if As(err, &record) {
		return newClassification(TLP, "not_tls", target)
	}

	var alert tls.AlertError
	if As(err, &alert) {
		return newClassification(TLA, "alert_received", target)
	}

	return nil
}

func classifyErrno(err error, target string) *Classification {
	var errno syscall.Errno
	if !As(err, &errno) {
		return nil
	}

	switch errno {
	case syscall.ECONNREFUSED:
		return newClassification(UCF, "connection_refused", target)
	case syscall.ETIMEDOUT:
		return newClassification(UCT, "connection_timeout", target)
	case syscall.ECONNRESET:
		return newClassification(URR, "connection_reset", target)
	case syscall.ENETUNREACH:
		return newClassification(NRH, "network_unreachable", target)
	case syscall.EHOSTUNREACH:
		return newClassification(NRH, "host_unreachable", target)
	}
	return nil
}

func classifyDNS(err error, target string) *Classification {
	var dnsErr *net.DNSError
	if !As(err, &dnsErr) {
		return nil
	}

	switch {
	case dnsErr.IsNotFound:
		return newClassification(DNS, "dns_not_found", target)
	case dnsErr.IsTimeout:
		return newClassification(DNS, "dns_timeout", target)
	default:
		return newClassification(DNS, "dns_resolution_failed", target)
	}
}

// classifyMessage matches error text for failures whose concrete types are
// unexported, such as the tls package's remote alerts.
func classifyMessage(err error, target string) *Classification {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "no such host"):
		return newClassification(DNS, "dns_not_found", target)
	case strings.Contains(msg, "connection refused"):
		return newClassification(UCF, "connection_refused", target)
	case strings.Contains(msg, "connection reset"):
		return newClassification(URR, "connection_reset", target)
	case strings.Contains(msg, "invalid port"), strings.Contains(msg, "missing port"):
		return newClassification(IHN, "invalid_port", target)
	case strings.Contains(msg, "protocol version not supported"),
		strings.Contains(msg, "no supported versions"):
		return newClassification(TLP, "protocol_version", target)
	case strings.Contains(msg, "handshake failure"),
		strings.Contains(msg, "tls: internal error"),
		strings.Contains(msg, "bad certificate"),
		strings.Contains(msg, "first record does not look like a tls handshake"):
		return newClassification(TLH, "handshake_failure", target)
	case strings.Contains(msg, "remote error: tls:"):
		return newClassification(TLA, "alert_received", target)
	}
	return nil
}

package event

// Event is the type to bind events.
type Event string

const (
	// CertificateExpiringSoon is the event triggered when a host's certificate enters its alert window.
	CertificateExpiringSoon Event = "CertificateExpiringSoon"
	// CertificateExpired is the event triggered when a host's certificate is past its notAfter date.
	CertificateExpired Event = "CertificateExpired"
	// CertificateCheckFailed is the event triggered when a host could not be checked at all.
	CertificateCheckFailed Event = "CertificateCheckFailed"
)

var descriptions = map[Event]string{
	CertificateExpiringSoon: "Certificate is expiring soon",
	CertificateExpired:      "Certificate has expired",
	CertificateCheckFailed:  "Certificate check failed",
}

// String returns a human readable description of e, or e itself when it has none.
func String(e Event) string {
	if desc, ok := descriptions[e]; ok {
		return desc
	}
	return string(e)
}

// ForExpiry picks the event matching an expiry state.
func ForExpiry(isExpired bool) Event {
	if isExpired {
		return CertificateExpired
	}
	return CertificateExpiringSoon
}

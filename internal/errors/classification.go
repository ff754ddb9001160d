package errors

import (
	"fmt"
	"time"
)

// Flag is a short code naming the kind of failure seen while contacting a host.
type Flag string

const (
	// TLS
	TLE Flag = "TLE" // certificate expired
	TLI Flag = "TLI" // certificate invalid or untrusted
	TLM Flag = "TLM" // certificate does not match the hostname
	TLH Flag = "TLH" // handshake failed
	TLP Flag = "TLP" // protocol or version error
	TLA Flag = "TLA" // alert received from the peer
	TLC Flag = "TLC" // system roots unavailable
	NPC Flag = "NPC" // no peer certificate presented

	// Connection
	UCF Flag = "UCF" // connection refused or failed
	UCT Flag = "UCT" // connection timeout
	URR Flag = "URR" // connection reset
	URT Flag = "URT" // deadline exceeded
	NRH Flag = "NRH" // no route to host
	CAN Flag = "CAN" // check canceled

	// Resolution
	DNS Flag = "DNS" // DNS resolution failure
	IHN Flag = "IHN" // invalid host name or address

	UPE Flag = "UPE" // anything else
)

func (f Flag) String() string {
	return string(f)
}

// Classification describes a failed host check in structured form, suitable
// for log fields and API responses.
type Classification struct {
	Flag    Flag   `json:"flag"`
	Details string `json:"details"`
	Target  string `json:"target"`

	// Populated for expired or invalid certificates when the verifier exposes them.
	CertExpiry  time.Time `json:"cert_expiry,omitempty"`
	CertSubject string    `json:"cert_subject,omitempty"`
}

func newClassification(flag Flag, details, target string) *Classification {
	return &Classification{Flag: flag, Details: details, Target: target}
}

// WithCert records the offending certificate's expiry and subject.
func (c *Classification) WithCert(expiry time.Time, subject string) *Classification {
	c.CertExpiry = expiry
	c.CertSubject = subject
	return c
}

func (c *Classification) String() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s)", c.Flag, c.Details)
}

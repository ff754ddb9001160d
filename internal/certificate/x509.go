package certificate

import (
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"github.com/TykTechnologies/certexpiry/internal/crypto"
)

// FromX509 renders a parsed leaf certificate into the Raw shape consumed by Parse.
func FromX509(cert *x509.Certificate) Raw {
	if cert == nil {
		return Raw{}
	}

	return Raw{
		Subject: Name{
			O:  strings.Join(cert.Subject.Organization, ", "),
			CN: cert.Subject.CommonName,
		},
		Issuer: Name{
			O:  strings.Join(cert.Issuer.Organization, ", "),
			CN: cert.Issuer.CommonName,
		},
		SubjectAltName: altNames(cert),
		ValidFrom:      formatDate(cert.NotBefore),
		ValidTo:        formatDate(cert.NotAfter),
		Fingerprint256: crypto.HexSHA256(cert.Raw),
	}
}

// formatDate leaves unset dates empty so Parse reports them as missing.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// altNames follows the "DNS:a, IP Address:b" rendering of subjectAltName.
func altNames(cert *x509.Certificate) string {
	var names []string
	for _, name := range cert.DNSNames {
		names = append(names, "DNS:"+name)
	}
	for _, ip := range cert.IPAddresses {
		names = append(names, "IP Address:"+ip.String())
	}
	for _, email := range cert.EmailAddresses {
		names = append(names, "email:"+email)
	}
	for _, uri := range cert.URIs {
		names = append(names, fmt.Sprintf("URI:%s", uri))
	}
	return strings.Join(names, ", ")
}

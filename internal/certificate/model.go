package certificate

import "time"

// DateLayout is the validity date format reported by the TLS stack for
// peer certificates, e.g. "Mar  5 12:00:00 2026 GMT".
const DateLayout = "Jan _2 15:04:05 2006 GMT"

// Name holds the distinguished-name attributes we care about.
type Name struct {
	O  string `json:"O,omitempty"`
	CN string `json:"CN,omitempty"`
}

// Raw is a peer certificate as handed over by the TLS layer. Validity
// dates are kept in their textual form until Parse normalises them.
type Raw struct {
	Subject        Name   `json:"subject"`
	Issuer         Name   `json:"issuer"`
	SubjectAltName string `json:"subjectaltname,omitempty"`
	ValidFrom      string `json:"valid_from"`
	ValidTo        string `json:"valid_to"`
	Fingerprint256 string `json:"fingerprint256,omitempty"`
}

// Subject is the normalised subject of a certificate.
type Subject struct {
	Org        string `json:"org"`
	CommonName string `json:"common_name"`
	AltName    string `json:"alt_name"`
}

// Issuer is the normalised issuer of a certificate.
type Issuer struct {
	Org        string `json:"org"`
	CommonName string `json:"common_name"`
}

// Details are the informational fields extracted from a peer certificate.
type Details struct {
	Subject Subject `json:"subject"`
	Issuer  Issuer  `json:"issuer"`
}

// Parsed is the outcome of Parse.
type Parsed struct {
	Details   Details
	ValidFrom time.Time
	ValidTo   time.Time
}

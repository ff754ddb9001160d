package certificate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMissingDate is wrapped by MalformedError when a validity date is empty.
	ErrMissingDate = errors.New("validity date is missing")

	dateLayouts = []string{
		DateLayout,
		time.RFC3339Nano,
	}
)

// MalformedError reports a validity date that could not be turned into a timestamp.
type MalformedError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed certificate: %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Parse normalises a raw peer certificate. Only the validity dates are
// load-bearing: issuer and subject attributes that are absent come back as
// empty strings.
func Parse(raw Raw) (Parsed, error) {
	validFrom, err := parseDate("valid_from", raw.ValidFrom)
	if err != nil {
		return Parsed{}, err
	}

	validTo, err := parseDate("valid_to", raw.ValidTo)
	if err != nil {
		return Parsed{}, err
	}

	return Parsed{
		Details: Details{
			Subject: Subject{
				Org:        raw.Subject.O,
				CommonName: raw.Subject.CN,
				AltName:    raw.SubjectAltName,
			},
			Issuer: Issuer{
				Org:        raw.Issuer.O,
				CommonName: raw.Issuer.CN,
			},
		},
		ValidFrom: validFrom,
		ValidTo:   validTo,
	}, nil
}

func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &MalformedError{Field: field, Value: value, Err: ErrMissingDate}
	}

	var lastErr error
	for _, layout := range dateLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}

	return time.Time{}, &MalformedError{Field: field, Value: value, Err: lastErr}
}

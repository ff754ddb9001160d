// Package expiry computes how far a certificate is from its notAfter date.
package expiry

import (
	"math"
	"time"
)

// Day is the length of one day used for rounding the remaining time.
const Day = 24 * time.Hour

// Status is the expiry state of a certificate at a given instant.
type Status struct {
	// Days remaining until expiry, rounded to the nearest integer
	// (halves round away from zero). Negative once expired.
	Days int64 `json:"days"`
	// Milliseconds remaining until expiry, rounded. Negative once expired.
	Milliseconds int64 `json:"milliseconds"`
	// IsExpired is true when Days <= 0.
	IsExpired bool `json:"is_expired"`
	// IsInAlertWindow is true when Days <= the alert window.
	IsInAlertWindow bool `json:"is_in_alert_window"`
}

// Compute returns the Status of a certificate valid until validTo, observed
// at now, against an alert window expressed in days.
func Compute(validTo, now time.Time, alertWindowDays int) Status {
	delta := validTo.Sub(now)

	days := int64(math.Round(float64(delta) / float64(Day)))
	ms := int64(math.Round(float64(delta) / float64(time.Millisecond)))

	return Status{
		Days:            days,
		Milliseconds:    ms,
		IsExpired:       days <= 0,
		IsInAlertWindow: days <= int64(alertWindowDays),
	}
}

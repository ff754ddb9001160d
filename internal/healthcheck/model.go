package healthcheck

import (
	"context"
	"time"
)

// Checker is the interface to implement for a health checker.
type Checker interface {
	Name() string
	Result(ctx context.Context) error
}

// Response is the aggregated result over all checks.
type Response struct {
	// Status is the aggregated status over all components.
	Status CheckStatus `json:"status"`
	// StatusCode is the HTTP response code for the result.
	StatusCode int `json:"status_code"`
	// Version is the running build version.
	Version string `json:"version,omitempty"`
	// Components contain all health check result states.
	Components []CheckResult `json:"components,omitempty"`
}

// CheckResult represents the result of running one check.
type CheckResult struct {
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	// Output carries the error message of a failing check.
	Output string `json:"output,omitempty"`
	// ObservationTS is the timestamp the result was made.
	ObservationTS time.Time `json:"observation_ts"`
}

// CheckStatus holds the status of a check result.
type CheckStatus string

const (
	// StatusPass is a passing health check.
	StatusPass CheckStatus = "pass"
	// StatusWarn is a failing optional health check.
	StatusWarn CheckStatus = "warn"
	// StatusFail is a failing required health check.
	StatusFail CheckStatus = "fail"
)

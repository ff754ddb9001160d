package checker

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/TykTechnologies/certexpiry/internal/certificate"
	"github.com/TykTechnologies/certexpiry/internal/errors"
	"github.com/TykTechnologies/certexpiry/internal/expiry"
	"github.com/TykTechnologies/certexpiry/internal/hostconfig"
)

// CheckResult is the certificate status of one host.
type CheckResult struct {
	Host        hostconfig.ResolvedHost `json:"host"`
	Details     certificate.Details     `json:"details"`
	ValidFrom   time.Time               `json:"valid_from"`
	ValidTo     time.Time               `json:"valid_to"`
	Expiry      expiry.Status           `json:"expiry"`
	Fingerprint string                  `json:"fingerprint"`
	CheckedAt   time.Time               `json:"checked_at"`
}

// Outcome is the result of checking the host at Index of the input. Exactly
// one of Result and Err is set.
type Outcome struct {
	Index  int
	Host   hostconfig.ResolvedHost
	Result *CheckResult
	Err    error
}

// OK reports whether the check succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Outcomes holds one Outcome per requested host, in input order.
type Outcomes []Outcome

// Err aggregates every failure, or returns nil when all checks succeeded.
func (o Outcomes) Err() error {
	var result *multierror.Error
	for _, outcome := range o {
		if outcome.Err != nil {
			result = multierror.Append(result, outcome.Err)
		}
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = errors.Formatter
	return result
}

// Results returns the successful results in input order.
func (o Outcomes) Results() []CheckResult {
	return lo.FilterMap(o, func(outcome Outcome, _ int) (CheckResult, bool) {
		if outcome.Result == nil {
			return CheckResult{}, false
		}
		return *outcome.Result, true
	})
}

// Failed returns the failed outcomes in input order.
func (o Outcomes) Failed() Outcomes {
	return lo.Filter(o, func(outcome Outcome, _ int) bool {
		return outcome.Err != nil
	})
}

// InAlertWindow returns the results whose certificate is within its alert window.
func InAlertWindow(results []CheckResult) []CheckResult {
	return lo.Filter(results, func(r CheckResult, _ int) bool {
		return r.Expiry.IsInAlertWindow
	})
}

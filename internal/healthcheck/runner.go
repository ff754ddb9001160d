package healthcheck

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TykTechnologies/certexpiry/internal/build"
)

type level int

const (
	levelOptional level = iota
	levelRequired
)

type registered struct {
	check Checker
	level level
}

// Runner is an object holding Checker implementations.
type Runner struct {
	checks []registered
	logger *logrus.Entry
	now    func() time.Time
}

// NewRunner creates a new runner, optionally with required checks.
func NewRunner(logger *logrus.Entry, required ...Checker) *Runner {
	r := &Runner{
		logger: logger,
		now:    time.Now,
	}
	r.Require(required...)
	return r
}

// Require adds checks that must pass.
func (r *Runner) Require(check ...Checker) {
	r.add(levelRequired, check)
}

// Optional adds checks that produce a warning when failing.
func (r *Runner) Optional(check ...Checker) {
	r.add(levelOptional, check)
}

func (r *Runner) add(l level, checks []Checker) {
	for _, c := range checks {
		r.checks = append(r.checks, registered{check: c, level: l})
	}
}

// Do runs all health checks sequentially, in the order they were added.
func (r *Runner) Do(ctx context.Context) Response {
	result := Response{
		Status:     StatusPass,
		StatusCode: http.StatusOK,
		Version:    build.VERSION,
	}

	for _, reg := range r.checks {
		component := CheckResult{
			Name:          reg.check.Name(),
			Status:        StatusPass,
			ObservationTS: r.now(),
		}

		err := reg.check.Result(ctx)
		if err != nil {
			component.Output = err.Error()
			logger := r.logger.WithError(err).WithField("check", component.Name)

			switch reg.level {
			case levelOptional:
				logger.Warn("Optional health check failed")
				component.Status = StatusWarn
				if result.Status == StatusPass {
					result.Status = StatusWarn
					result.StatusCode = http.StatusMultiStatus
				}
			case levelRequired:
				logger.Error("Required health check failed")
				component.Status = StatusFail
				result.Status = StatusFail
				result.StatusCode = http.StatusServiceUnavailable
			}
		}

		result.Components = append(result.Components, component)
	}

	return result
}

// Package hostconfig turns caller-supplied host specs into fully populated
// check targets.
package hostconfig

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/TykTechnologies/certexpiry/config"
)

// HeaderUserAgent is the header carrying the resolved user agent.
const HeaderUserAgent = "User-Agent"

// ErrEmptyHostname is returned when a host spec has no hostname. Resolve
// never returns it; the check of such a host fails with it instead.
var ErrEmptyHostname = errors.New("empty hostname")

// HostSpec is one requested host. Nil optional fields fall back to the
// checker defaults; a non-nil field is used as given, zero included.
type HostSpec struct {
	Hostname        string  `json:"hostname" yaml:"hostname"`
	Port            *int    `json:"port,omitempty" yaml:"port,omitempty"`
	AlertWindowDays *int    `json:"alert_window_days,omitempty" yaml:"alert_window_days,omitempty"`
	UserAgent       *string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// Host returns a spec for hostname with no overrides.
func Host(hostname string) HostSpec {
	return HostSpec{Hostname: hostname}
}

// WithPort returns a copy of s with the port set.
func (s HostSpec) WithPort(port int) HostSpec {
	s.Port = &port
	return s
}

// WithAlertWindow returns a copy of s with the alert window set.
func (s HostSpec) WithAlertWindow(days int) HostSpec {
	s.AlertWindowDays = &days
	return s
}

// WithUserAgent returns a copy of s with the user agent set.
func (s HostSpec) WithUserAgent(ua string) HostSpec {
	s.UserAgent = &ua
	return s
}

// ResolvedHost is a HostSpec merged with the defaults. Every field is set.
type ResolvedHost struct {
	Hostname        string            `json:"hostname"`
	Port            int               `json:"port"`
	AlertWindowDays int               `json:"alert_window_days"`
	Headers         map[string]string `json:"headers"`
	Method          string            `json:"method"`
}

// Address returns hostname:port, bracketing IPv6 literals.
func (h ResolvedHost) Address() string {
	return net.JoinHostPort(h.Hostname, strconv.Itoa(h.Port))
}

// UserAgent returns the resolved User-Agent header value.
func (h ResolvedHost) UserAgent() string {
	return h.Headers[HeaderUserAgent]
}

// Resolve merges each spec with global. The result has the same length and
// order as specs. Hostnames are copied verbatim.
func Resolve(global config.Global, specs []HostSpec) []ResolvedHost {
	resolved := make([]ResolvedHost, len(specs))
	for i, spec := range specs {
		resolved[i] = ResolveOne(global, spec)
	}
	return resolved
}

// ResolveOne merges a single spec with global.
func ResolveOne(global config.Global, spec HostSpec) ResolvedHost {
	host := ResolvedHost{
		Hostname:        spec.Hostname,
		Port:            global.DefaultPort,
		AlertWindowDays: global.AlertWindow(),
		Headers:         map[string]string{HeaderUserAgent: global.UserAgent},
		Method:          http.MethodGet,
	}
	if spec.Port != nil {
		host.Port = *spec.Port
	}
	if spec.AlertWindowDays != nil {
		host.AlertWindowDays = *spec.AlertWindowDays
	}
	if spec.UserAgent != nil {
		host.Headers[HeaderUserAgent] = *spec.UserAgent
	}
	return host
}

package hostconfig

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseHostSpec reads "host", "host:port" or "[v6]:port" as given on the
// command line.
func ParseHostSpec(s string) (HostSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HostSpec{}, ErrEmptyHostname
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// No port, possibly a bare IPv6 literal.
		return Host(strings.Trim(s, "[]")), nil
	}
	if host == "" {
		return HostSpec{}, ErrEmptyHostname
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return HostSpec{}, fmt.Errorf("invalid port %q for host %s", portStr, host)
	}
	return Host(host).WithPort(port), nil
}

// ParseHostSpecs parses every entry with ParseHostSpec.
func ParseHostSpecs(values []string) ([]HostSpec, error) {
	specs := make([]HostSpec, 0, len(values))
	for _, v := range values {
		spec, err := ParseHostSpec(v)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// File is the on-disk hosts list.
type File struct {
	Hosts []HostSpec `yaml:"hosts"`
}

// LoadFile reads a YAML hosts file. An empty file yields no hosts.
func LoadFile(path string) ([]HostSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a YAML hosts list from r.
func Decode(r io.Reader) ([]HostSpec, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("couldn't decode hosts file: %w", err)
	}
	return file.Hosts, nil
}

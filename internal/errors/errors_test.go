package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatter(t *testing.T) {
	tests := []struct {
		name     string
		errs     []error
		expected string
	}{
		{
			name:     "no errors",
			errs:     []error{},
			expected: "",
		},
		{
			name:     "single error",
			errs:     []error{errors.New("a.example:443: refused")},
			expected: "a.example:443: refused",
		},
		{
			name:     "multiple errors",
			errs:     []error{errors.New("error 1"), errors.New("error 2")},
			expected: "error 1\nerror 2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Formatter(tc.errs))
		})
	}
}

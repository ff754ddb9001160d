package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventToString(t *testing.T) {
	t.Parallel()

	t.Run("Event with description", func(t *testing.T) {
		t.Parallel()

		s := String(CertificateExpiringSoon)
		assert.Equal(t, "Certificate is expiring soon", s)
		assert.Contains(t, String(CertificateCheckFailed), " ")
	})

	t.Run("Event without description", func(t *testing.T) {
		t.Parallel()

		s := String(Event("invalid"))
		assert.Equal(t, "invalid", s)
	})
}

func TestForExpiry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CertificateExpired, ForExpiry(true))
	assert.Equal(t, CertificateExpiringSoon, ForExpiry(false))
}

package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		validTo time.Time
		window  int
		want    Status
	}{
		{
			name:    "60 days left outside window",
			validTo: now.Add(60 * Day),
			window:  30,
			want: Status{
				Days:         60,
				Milliseconds: (60 * Day).Milliseconds(),
			},
		},
		{
			name:    "60 days left inside wide window",
			validTo: now.Add(60 * Day),
			window:  120,
			want: Status{
				Days:            60,
				Milliseconds:    (60 * Day).Milliseconds(),
				IsInAlertWindow: true,
			},
		},
		{
			name:    "expired five days ago",
			validTo: now.Add(-5 * Day),
			window:  30,
			want: Status{
				Days:            -5,
				Milliseconds:    (-5 * Day).Milliseconds(),
				IsExpired:       true,
				IsInAlertWindow: true,
			},
		},
		{
			name:    "expires right now",
			validTo: now,
			window:  0,
			want: Status{
				IsExpired:       true,
				IsInAlertWindow: true,
			},
		},
		{
			name:    "window boundary is inclusive",
			validTo: now.Add(30 * Day),
			window:  30,
			want: Status{
				Days:            30,
				Milliseconds:    (30 * Day).Milliseconds(),
				IsInAlertWindow: true,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compute(tc.validTo, now, tc.window))
		})
	}
}

func TestCompute_Rounding(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("rounds to nearest day", func(t *testing.T) {
		assert.Equal(t, int64(10), Compute(now.Add(10*Day+11*time.Hour), now, 30).Days)
		assert.Equal(t, int64(11), Compute(now.Add(10*Day+13*time.Hour), now, 30).Days)
	})

	t.Run("halves round away from zero", func(t *testing.T) {
		assert.Equal(t, int64(3), Compute(now.Add(2*Day+12*time.Hour), now, 30).Days)
		assert.Equal(t, int64(-3), Compute(now.Add(-2*Day-12*time.Hour), now, 30).Days)
	})

	t.Run("less than half a day left counts as expired", func(t *testing.T) {
		status := Compute(now.Add(6*time.Hour), now, 30)
		assert.Equal(t, int64(0), status.Days)
		assert.True(t, status.IsExpired)
		assert.Equal(t, (6 * time.Hour).Milliseconds(), status.Milliseconds)
	})

	t.Run("milliseconds round sub-millisecond remainders", func(t *testing.T) {
		status := Compute(now.Add(1500*time.Microsecond), now, 30)
		assert.Equal(t, int64(2), status.Milliseconds)
	})
}

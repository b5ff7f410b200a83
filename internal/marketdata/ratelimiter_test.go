package marketdata

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_RespectsLimit(t *testing.T) {
	r := NewRateLimiter()
	now := time.Now()
	r.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, r.CanRequest("alpha", 3))
		r.RecordRequest("alpha")
	}
	assert.False(t, r.CanRequest("alpha", 3))
	assert.Equal(t, float64(0), r.GetRemaining("alpha", 3))
}

func TestRateLimiter_WindowResetsAfterOneHour(t *testing.T) {
	r := NewRateLimiter()
	now := time.Now()
	r.now = func() time.Time { return now }

	r.RecordRequest("alpha")
	r.RecordRequest("alpha")
	assert.Equal(t, float64(1), r.GetRemaining("alpha", 3))

	now = now.Add(61 * time.Minute)
	assert.True(t, r.CanRequest("alpha", 3))
	assert.Equal(t, float64(3), r.GetRemaining("alpha", 3))
}

func TestRateLimiter_UnboundedAlwaysAllows(t *testing.T) {
	r := NewRateLimiter()
	inf := math.Inf(1)
	for i := 0; i < 1000; i++ {
		assert.True(t, r.CanRequest("simulated", inf))
		r.RecordRequest("simulated")
	}
	assert.True(t, math.IsInf(r.GetRemaining("simulated", inf), 1))
}

func TestRateLimiter_ProvidersAreIndependent(t *testing.T) {
	r := NewRateLimiter()
	r.RecordRequest("alpha")
	r.RecordRequest("alpha")
	assert.True(t, r.CanRequest("beta", 1))
	assert.Equal(t, float64(1), r.GetRemaining("beta", 1))
}

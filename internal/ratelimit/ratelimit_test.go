package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, perSecond float64, burst int) (*KeyedLimiter, *time.Time) {
	t.Helper()
	kl := NewKeyedLimiter(&Config{RatePerSecond: perSecond, Burst: burst, IdleTTL: time.Minute})
	t.Cleanup(kl.Close)
	clock := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	kl.now = func() time.Time { return clock }
	return kl, &clock
}

func TestBurstThenThrottle(t *testing.T) {
	kl, clock := newTestLimiter(t, 1, 3)

	for i := 0; i < 3; i++ {
		info := kl.Allow("alice")
		require.True(t, info.Allowed, "request %d", i)
		assert.Equal(t, 2-i, info.Remaining)
	}

	info := kl.Allow("alice")
	assert.False(t, info.Allowed)
	assert.Equal(t, 3, info.Limit)
	assert.InDelta(t, time.Second.Seconds(), info.RetryAfter.Seconds(), 0.01)

	*clock = clock.Add(time.Second)
	assert.True(t, kl.Allow("alice").Allowed)
}

func TestKeysAreIndependent(t *testing.T) {
	kl, _ := newTestLimiter(t, 1, 1)

	assert.True(t, kl.Allow("alice").Allowed)
	assert.False(t, kl.Allow("alice").Allowed)
	assert.True(t, kl.Allow("bob").Allowed)
}

func TestCleanupForgetsIdleKeys(t *testing.T) {
	kl, clock := newTestLimiter(t, 1, 1)
	kl.Allow("alice")
	*clock = clock.Add(30 * time.Second)
	kl.Allow("bob")

	*clock = clock.Add(45 * time.Second)
	kl.cleanup()
	assert.Equal(t, 1, kl.Len())

	// A forgotten key starts with a full bucket.
	assert.True(t, kl.Allow("alice").Allowed)
}

func TestCloseIsIdempotent(t *testing.T) {
	kl := NewKeyedLimiter(nil)
	kl.Close()
	assert.NotPanics(t, kl.Close)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1:1234", "198.51.100.2"},
		{"remote addr", nil, "192.0.2.10:5555", "192.0.2.10"},
		{"bare remote", nil, "192.0.2.10", "192.0.2.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}

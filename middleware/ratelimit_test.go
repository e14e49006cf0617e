package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiter_SweepDropsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Second), 1, time.Minute)

	rl.GetLimiter("203.0.113.1")
	rl.GetLimiter("203.0.113.2")
	assert.Len(t, rl.ips, 2)

	// Age one entry past the TTL, then sweep.
	rl.mu.Lock()
	rl.ips["203.0.113.1"].lastSeen = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	rl.sweep(time.Now())

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.ips, "203.0.113.1")
	assert.Contains(t, rl.ips, "203.0.113.2")
}

func TestRateLimiter_SameIPKeepsOneBucket(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Second), 1, time.Minute)

	first := rl.GetLimiter("203.0.113.9")
	second := rl.GetLimiter("203.0.113.9")
	assert.Same(t, first, second)
	assert.Len(t, rl.ips, 1)
}

// internal/ratelimit/ratelimit_test.go
//
// Run: go test ./internal/ratelimit -v

package ratelimit

import (
	"testing"
	"time"
)

// newTestLimiter returns a limiter with a controllable clock and no sweeper.
func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	clock := start
	l := &Limiter{
		buckets: make(map[string]*bucket),
		now:     func() time.Time { return clock },
	}
	return l, &clock
}

func TestLimitBoundary(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1000, 0))

	const limit = 3
	window := time.Minute

	// Exactly `limit` submissions pass; the next one is rejected.
	for i := 1; i <= limit; i++ {
		if !l.Allow("1.2.3.4", limit, window) {
			t.Fatalf("submission %d should be allowed", i)
		}
	}
	if l.Allow("1.2.3.4", limit, window) {
		t.Fatal("submission limit+1 should be rejected")
	}

	// A different IP is unaffected.
	if !l.Allow("5.6.7.8", limit, window) {
		t.Error("other IPs must have independent counters")
	}
}

func TestWindowExpiry(t *testing.T) {
	l, clock := newTestLimiter(time.Unix(1000, 0))

	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4", 3, time.Minute)
	}
	if l.Allow("1.2.3.4", 3, time.Minute) {
		t.Fatal("should be limited inside the window")
	}

	*clock = clock.Add(61 * time.Second)
	if !l.Allow("1.2.3.4", 3, time.Minute) {
		t.Fatal("expired window should reset the counter")
	}
}

func TestZeroLimitDisables(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1000, 0))
	for i := 0; i < 100; i++ {
		if !l.Allow("1.2.3.4", 0, time.Minute) {
			t.Fatal("limit 0 must disable limiting")
		}
	}
}

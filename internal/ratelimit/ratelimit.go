// internal/ratelimit/ratelimit.go
//
// FormRelayer – per-IP submission rate limiter.
//
// Context
//   Each client IP gets a counter with a TTL equal to the configured window.
//   The first submission starts the window; subsequent ones increment the
//   counter until it expires.  This is deliberately approximate: two
//   requests racing past the limit at the same instant may both pass.  The
//   limiter exists to blunt scripted abuse, not to provide exact quota
//   accounting, so no lock is held across the whole pipeline.
//
// Workflow
//   •  Allow(key, limit, window) increments and answers in one step.
//   •  Expired entries are reaped lazily on access and by a background
//      sweep so idle IPs do not accumulate.
//
//------------------------------------------------------------------------------

package ratelimit

import (
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

// Limiter is a process-local sliding counter store.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time // overridable in tests
	ticker  *time.Ticker
}

type bucket struct {
	count   int
	expires time.Time
}

// New constructs a Limiter and starts the background sweeper.
func New() *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		ticker:  time.NewTicker(sweepInterval),
	}
	go l.sweepLoop()
	return l
}

// Allow records one hit for key and reports whether it is within limit for
// the window.  A non-positive limit disables limiting.
func (l *Limiter) Allow(key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.expires) {
		l.buckets[key] = &bucket{count: 1, expires: now.Add(window)}
		return true
	}
	b.count++
	return b.count <= limit
}

// Close stops the sweeper.
func (l *Limiter) Close() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
}

func (l *Limiter) sweepLoop() {
	for range l.ticker.C {
		l.mu.Lock()
		now := l.now()
		for k, b := range l.buckets {
			if now.After(b.expires) {
				delete(l.buckets, k)
			}
		}
		l.mu.Unlock()
	}
}

// Package ratelimit implements an in-memory sliding-window limiter.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/casedesk/session-guard/internal/core/domain"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// Limiter keeps one bucket of attempt timestamps per key. Buckets are pruned
// only when their key is checked, so memory grows with the number of
// distinct keys the caller uses.
type Limiter struct {
	mu          sync.Mutex
	buckets     map[string][]time.Time
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// New creates a Limiter. Non-positive arguments fall back to the defaults.
func New(maxAttempts int, window time.Duration) *Limiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		buckets:     make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// WithClock replaces the limiter's time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check records an attempt for key if the window still has room. A denied
// attempt is not recorded.
func (l *Limiter) Check(_ context.Context, key string) (domain.RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	bucket := l.buckets[key]
	kept := bucket[:0]
	for _, ts := range bucket {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.maxAttempts {
		l.buckets[key] = kept
		reset := kept[0].Add(l.window)
		return domain.RateLimitResult{
			Allowed:    false,
			Remaining:  0,
			ResetTime:  reset,
			RetryAfter: RetryAfterSeconds(reset.Sub(now)),
		}, nil
	}

	kept = append(kept, now)
	l.buckets[key] = kept
	return domain.RateLimitResult{
		Allowed:   true,
		Remaining: l.maxAttempts - len(kept),
		ResetTime: kept[0].Add(l.window),
	}, nil
}

// Reset drops the bucket for key.
func (l *Limiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
	return nil
}

// RetryAfterSeconds rounds d up to whole seconds, never below one.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

package domain

import "time"

// TokenInfo describes the timing of a token as read from its payload.
type TokenInfo struct {
	Valid     bool      `json:"isValid"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	// TimeUntilExpiry is expiresAt*1000 - now in milliseconds.
	TimeUntilExpiry int64 `json:"timeUntilExpiry"`
}

// Remaining returns TimeUntilExpiry as a duration.
func (i TokenInfo) Remaining() time.Duration {
	return time.Duration(i.TimeUntilExpiry) * time.Millisecond
}

// RateLimitResult is the outcome of a single rate-limit check.
type RateLimitResult struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"resetTime"`
	// RetryAfter is in whole seconds, rounded up; zero when Allowed.
	RetryAfter int `json:"retryAfter"`
}

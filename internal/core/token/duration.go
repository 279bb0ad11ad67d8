package token

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// DefaultExpiresIn is used when an expiry is missing or cannot be parsed.
const DefaultExpiresIn = 24 * time.Hour

var expiresInPattern = regexp.MustCompile(`^(\d+)\s*([smhd])$`)

// ParseExpiresIn converts expressions like "24h", "30m", "45s" or "7d".
// Anything else, including values that overflow time.Duration, yields
// DefaultExpiresIn.
func ParseExpiresIn(s string) time.Duration {
	m := expiresInPattern.FindStringSubmatch(s)
	if m == nil {
		return DefaultExpiresIn
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return DefaultExpiresIn
	}

	var unit time.Duration
	switch m[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}
	if n > math.MaxInt64/int64(unit) {
		return DefaultExpiresIn
	}
	return time.Duration(n) * unit
}

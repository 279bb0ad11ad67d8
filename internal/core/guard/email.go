package guard

import (
	"errors"
	"regexp"
	"strings"
)

const maxEmailLength = 254

var (
	ErrEmailRequired          = errors.New("email is required")
	ErrEmailInvalidFormat     = errors.New("invalid email format")
	ErrEmailInvalidCharacters = errors.New("email contains invalid characters")
)

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	dangerousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)on\w+=`),
		regexp.MustCompile(`(?i)<iframe`),
	}
)

// EmailResult is the outcome of ValidateEmail. Sanitized is set only when
// Valid.
type EmailResult struct {
	Valid     bool
	Err       error
	Sanitized string
}

// ValidateEmail checks the basic local@domain.tld shape and rejects values
// carrying script-like fragments.
func ValidateEmail(email string) EmailResult {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return EmailResult{Err: ErrEmailRequired}
	}
	if !emailShape.MatchString(trimmed) {
		return EmailResult{Err: ErrEmailInvalidFormat}
	}

	normalized := truncateRunes(strings.ToLower(trimmed), maxEmailLength)
	for _, p := range dangerousPatterns {
		if p.MatchString(normalized) {
			return EmailResult{Err: ErrEmailInvalidCharacters}
		}
	}
	return EmailResult{Valid: true, Sanitized: normalized}
}

// NormalizeEmail is the lookup form of an address: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

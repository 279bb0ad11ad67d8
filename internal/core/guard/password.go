package guard

import (
	"errors"
	"math"
	"regexp"
	"unicode"
	"unicode/utf8"
)

const (
	// MinPasswordLength is the hard minimum; shorter passwords are invalid.
	MinPasswordLength = 6
	// RecommendedPasswordLength is what the length check scores against.
	RecommendedPasswordLength = 8
)

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordCommon   = errors.New("password is too common")
)

// ErrPasswordShortWarning is reported, not returned as a failure, for
// passwords that meet the minimum but not the recommended length.
var ErrPasswordShortWarning = errors.New("use at least 8 characters for a stronger password")

var commonPrefix = regexp.MustCompile(`(?i)^(password|123456|qwerty|admin)`)

// PasswordChecks are the six individual strength criteria.
type PasswordChecks struct {
	Length    bool `json:"length"`
	Lowercase bool `json:"lowercase"`
	Uppercase bool `json:"uppercase"`
	Number    bool `json:"number"`
	Special   bool `json:"special"`
	NotCommon bool `json:"notCommon"`
}

func (c PasswordChecks) passed() int {
	n := 0
	for _, ok := range []bool{c.Length, c.Lowercase, c.Uppercase, c.Number, c.Special, c.NotCommon} {
		if ok {
			n++
		}
	}
	return n
}

// PasswordResult is the outcome of ValidatePassword. Strength is the
// percentage of checks passed.
type PasswordResult struct {
	Valid    bool
	Err      error
	Warning  error
	Strength int
	Checks   PasswordChecks
}

// ValidatePassword scores pw. Passwords under MinPasswordLength fail hard
// with strength 0; passwords under RecommendedPasswordLength are valid but
// carry a warning.
func ValidatePassword(pw string) PasswordResult {
	if pw == "" {
		return PasswordResult{Err: ErrPasswordRequired}
	}

	length := utf8.RuneCountInString(pw)
	checks := PasswordChecks{
		Length:    length >= RecommendedPasswordLength,
		NotCommon: !commonPrefix.MatchString(pw),
	}
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			checks.Lowercase = true
		case unicode.IsUpper(r):
			checks.Uppercase = true
		case unicode.IsDigit(r):
			checks.Number = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			checks.Special = true
		}
	}

	if length < MinPasswordLength {
		return PasswordResult{Err: ErrPasswordTooShort, Checks: checks}
	}

	res := PasswordResult{
		Valid:    checks.NotCommon,
		Strength: int(math.Round(float64(checks.passed()) * 100 / 6)),
		Checks:   checks,
	}
	if !checks.NotCommon {
		res.Err = ErrPasswordCommon
	}
	if !checks.Length {
		res.Warning = ErrPasswordShortWarning
	}
	return res
}

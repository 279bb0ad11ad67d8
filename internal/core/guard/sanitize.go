// Package guard holds the input sanitization and credential validation
// routines shared by the session layer and request handlers.
package guard

import (
	"strings"
	"unicode/utf8"
)

const defaultMaxLength = 1000

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

// SanitizeHTML escapes the characters that can open markup or attributes.
func SanitizeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

type sanitizeOptions struct {
	allowHTML          bool
	maxLength          int
	trimWhitespace     bool
	removeControlChars bool
}

// SanitizeOption tweaks SanitizeInput.
type SanitizeOption func(*sanitizeOptions)

// AllowHTML skips the final HTML escaping step.
func AllowHTML() SanitizeOption {
	return func(o *sanitizeOptions) { o.allowHTML = true }
}

// MaxLength bounds the result in runes. Non-positive values are ignored.
func MaxLength(n int) SanitizeOption {
	return func(o *sanitizeOptions) {
		if n > 0 {
			o.maxLength = n
		}
	}
}

// KeepWhitespace disables trimming.
func KeepWhitespace() SanitizeOption {
	return func(o *sanitizeOptions) { o.trimWhitespace = false }
}

// KeepControlChars disables control character stripping.
func KeepControlChars() SanitizeOption {
	return func(o *sanitizeOptions) { o.removeControlChars = false }
}

// SanitizeInput trims, strips control characters, truncates and escapes s,
// in that order. Truncation runs before escaping so the bound applies to the
// raw content.
func SanitizeInput(s string, opts ...SanitizeOption) string {
	o := sanitizeOptions{
		maxLength:          defaultMaxLength,
		trimWhitespace:     true,
		removeControlChars: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.trimWhitespace {
		s = strings.TrimSpace(s)
	}
	if o.removeControlChars {
		s = strings.Map(func(r rune) rune {
			if r <= 0x1F || r == 0x7F {
				return -1
			}
			return r
		}, s)
	}
	s = truncateRunes(s, o.maxLength)
	if !o.allowHTML {
		s = SanitizeHTML(s)
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

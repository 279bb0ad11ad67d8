package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	got := SanitizeHTML(`<script>alert(1)</script>`)
	require.Equal(t, "&lt;script&gt;alert(1)&lt;&#x2F;script&gt;", got)
	require.NotContains(t, got, "<")
	require.NotContains(t, got, ">")
	require.NotContains(t, got, `"`)

	require.Equal(t, "a &amp; b &#x3D; &#x60;c&#x60; &quot;d&quot; &#x27;e&#x27;", SanitizeHTML("a & b = `c` \"d\" 'e'"))
	require.Equal(t, "plain text", SanitizeHTML("plain text"))
}

func TestSanitizeInput_Defaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hello &lt;b&gt;", SanitizeInput("  hello\x00\x07 <b>\x7f  "))
	require.Equal(t, "", SanitizeInput("   "))
}

func TestSanitizeInput_TruncatesBeforeEscaping(t *testing.T) {
	t.Parallel()

	got := SanitizeInput("<<<<<", MaxLength(2))
	require.Equal(t, "&lt;&lt;", got)

	long := strings.Repeat("é", 1200)
	require.Equal(t, 1000, len([]rune(SanitizeInput(long))))
}

func TestSanitizeInput_Options(t *testing.T) {
	t.Parallel()

	require.Equal(t, "<b>bold</b>", SanitizeInput(" <b>bold</b> ", AllowHTML()))
	require.Equal(t, "  x  ", SanitizeInput("  x  ", KeepWhitespace()))
	require.Equal(t, "a\tb", SanitizeInput("a\tb", KeepControlChars()))
	require.Equal(t, "ab", SanitizeInput("a\tb"))
	require.Equal(t, "abc", SanitizeInput("abc", MaxLength(0)))
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	res := ValidateEmail("demo@example.com")
	require.True(t, res.Valid)
	require.NoError(t, res.Err)
	require.Equal(t, "demo@example.com", res.Sanitized)

	res = ValidateEmail("  Demo@Example.COM ")
	require.True(t, res.Valid)
	require.Equal(t, "demo@example.com", res.Sanitized)

	cases := []struct {
		in  string
		err error
	}{
		{"", ErrEmailRequired},
		{"   ", ErrEmailRequired},
		{"invalid", ErrEmailInvalidFormat},
		{"@x.com", ErrEmailInvalidFormat},
		{"a@b", ErrEmailInvalidFormat},
		{"a b@c.com", ErrEmailInvalidFormat},
		{"a@b.com<script>", ErrEmailInvalidCharacters},
		{"a@b.com<SCRIPT>", ErrEmailInvalidCharacters},
		{"javascript:x@b.com", ErrEmailInvalidCharacters},
		{"x@b.com?onload=1", ErrEmailInvalidCharacters},
		{"x@b.com<iframe", ErrEmailInvalidCharacters},
	}
	for _, tc := range cases {
		res := ValidateEmail(tc.in)
		require.False(t, res.Valid, tc.in)
		require.ErrorIs(t, res.Err, tc.err, tc.in)
		require.Empty(t, res.Sanitized, tc.in)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	t.Run("too short", func(t *testing.T) {
		res := ValidatePassword("abc")
		require.False(t, res.Valid)
		require.Equal(t, 0, res.Strength)
		require.ErrorIs(t, res.Err, ErrPasswordTooShort)
	})

	t.Run("empty", func(t *testing.T) {
		res := ValidatePassword("")
		require.False(t, res.Valid)
		require.ErrorIs(t, res.Err, ErrPasswordRequired)
	})

	t.Run("all checks", func(t *testing.T) {
		res := ValidatePassword("Abcdef1!")
		require.True(t, res.Valid)
		require.NoError(t, res.Err)
		require.NoError(t, res.Warning)
		require.Equal(t, 100, res.Strength)
		require.Equal(t, PasswordChecks{true, true, true, true, true, true}, res.Checks)
	})

	t.Run("short but acceptable", func(t *testing.T) {
		res := ValidatePassword("abcde1")
		require.True(t, res.Valid)
		require.ErrorIs(t, res.Warning, ErrPasswordShortWarning)
		// lowercase, number, not common
		require.Equal(t, 50, res.Strength)
	})

	t.Run("common prefix", func(t *testing.T) {
		for _, pw := range []string{"password123", "Qwerty!!99", "123456789", "ADMIN-pass"} {
			res := ValidatePassword(pw)
			require.False(t, res.Valid, pw)
			require.False(t, res.Checks.NotCommon, pw)
			require.ErrorIs(t, res.Err, ErrPasswordCommon, pw)
		}
	})

	t.Run("rounding", func(t *testing.T) {
		// length, lowercase, not common: 3 of 6
		res := ValidatePassword("abcdefgh")
		require.Equal(t, 50, res.Strength)
		// length, lowercase, uppercase, not common: 4 of 6 = 66.67
		res = ValidatePassword("abcdEFGH")
		require.Equal(t, 67, res.Strength)
	})
}

func TestDemoHasher(t *testing.T) {
	t.Parallel()

	h := NewDemoHasher("salt")
	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)
	require.NotContains(t, hash, "secret1")

	again, _ := h.Hash("secret1")
	require.Equal(t, hash, again)
	require.True(t, h.Compare(hash, "secret1"))
	require.False(t, h.Compare(hash, "secret2"))
	require.False(t, NewDemoHasher("other").Compare(hash, "secret1"))
	require.False(t, h.Compare("plain", "plain"))
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	require.True(t, h.Compare(hash, "secret1"))
	require.False(t, h.Compare(hash, "nope"))
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	type profile struct {
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required,min=6"`
	}

	require.NoError(t, ValidateStruct(profile{Name: "Ann", Password: "secret"}))

	err := ValidateStruct(profile{Password: "abc"})
	require.Error(t, err)
	require.Equal(t, "name is required; password must be at least 6 characters", err.Error())
}

package domain

// Identity claim keys.
const (
	ClaimUserID = "userId"
	ClaimEmail  = "email"
	ClaimName   = "name"
	ClaimRole   = "role"
)

// Reserved payload keys added by the token codec.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimIssuer    = "iss"
	ClaimAudience  = "aud"
)

// Claims is the set of identity attributes carried in a token payload.
// Values are primitives; after a round trip through the codec numbers are
// float64.
type Claims map[string]any

// String returns the string value stored under key, or "".
func (c Claims) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Int64 returns the numeric value stored under key.
func (c Claims) Int64(key string) (int64, bool) {
	switch v := c[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func (c Claims) UserID() string { return c.String(ClaimUserID) }
func (c Claims) Email() string  { return c.String(ClaimEmail) }
func (c Claims) Name() string   { return c.String(ClaimName) }
func (c Claims) Role() string   { return c.String(ClaimRole) }

// HasRole reports whether the claims grant role. Admins hold every role.
func (c Claims) HasRole(role string) bool {
	current := c.Role()
	if current == "" {
		return false
	}
	return current == role || current == RoleAdmin
}

// Clone returns a shallow copy of c.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// WithoutTimestamps returns a copy of c without iat and exp, which is the
// claim set a refreshed token is re-issued with.
func (c Claims) WithoutTimestamps() Claims {
	out := c.Clone()
	delete(out, ClaimIssuedAt)
	delete(out, ClaimExpiresAt)
	return out
}

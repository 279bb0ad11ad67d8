package ports

import (
	"context"

	"github.com/casedesk/session-guard/internal/core/domain"
)

// LoginRequest carries credentials plus the key the rate limiter buckets
// attempts under. An empty ClientKey falls back to the normalized email.
type LoginRequest struct {
	Email     string
	Password  string
	ClientKey string
}

// Profile is the registration input.
type Profile struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResult is a successful login or registration.
type AuthResult struct {
	Token string
	User  domain.PublicUser
}

// AuthService is the stateless token service the HTTP surface talks to.
type AuthService interface {
	Authenticate(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Register(ctx context.Context, profile Profile) (*AuthResult, error)
	Refresh(ctx context.Context, token string) (string, error)
	Verify(token string) (domain.Claims, error)
	Inspect(token string) (domain.TokenInfo, error)
	Revoke(ctx context.Context, token string)
}

package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/casedesk/session-guard/internal/core/domain"
)

// Context keys set by Auth.
const (
	ClaimsKey = "claims"
	TokenKey  = "token"
)

// TokenVerifier returns the payload of a current token.
type TokenVerifier interface {
	Verify(token string) (domain.Claims, error)
}

// Auth verifies the bearer token and injects its claims into the context.
// Failures are returned as domain errors for the HTTP error handler.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, err := BearerToken(c)
			if err != nil {
				return err
			}

			claims, err := verifier.Verify(tok)
			if err != nil {
				return domain.ErrTokenInvalid
			}

			c.Set(ClaimsKey, claims)
			c.Set(TokenKey, tok)
			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", domain.ErrNotAuthenticated
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrTokenInvalid
	}
	return strings.TrimSpace(parts[1]), nil
}

// Claims returns the claims injected by Auth.
func Claims(c echo.Context) (domain.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(domain.Claims)
	return claims, ok && claims != nil
}

package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/casedesk/session-guard/internal/api/middleware"
	"github.com/casedesk/session-guard/internal/core/domain"
)

// errorEnvelope documents the error body rendered by the API error handler.
type errorEnvelope struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"invalid email or password"`
}

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// user id means the middleware did not run or the token carries no
// identity; both are treated as unauthenticated.
func ctxClaims(c echo.Context) (domain.Claims, error) {
	claims, ok := middleware.Claims(c)
	if !ok || claims.UserID() == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return claims, nil
}

func ctxToken(c echo.Context) (string, error) {
	tok, _ := c.Get(middleware.TokenKey).(string)
	if tok == "" {
		return "", domain.ErrNotAuthenticated
	}
	return tok, nil
}

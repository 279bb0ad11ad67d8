package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/casedesk/session-guard/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps session errors to their HTTP status codes.
//   - Sets Retry-After on rate-limited responses.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if retry, ok := domain.RetryAfter(err); ok {
			c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Success: false, Error: msg})
	}
}

var statusByCode = map[domain.ErrorCode]int{
	domain.CodeValidation:         http.StatusBadRequest,
	domain.CodeInvalidCredentials: http.StatusUnauthorized,
	domain.CodeDuplicateUser:      http.StatusConflict,
	domain.CodeRateLimited:        http.StatusTooManyRequests,
	domain.CodeTokenInvalid:       http.StatusUnauthorized,
	domain.CodeNotAuthenticated:   http.StatusUnauthorized,
	domain.CodeStorage:            http.StatusServiceUnavailable,
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ae *domain.AuthError
	if errors.As(err, &ae) {
		if status, ok := statusByCode[ae.Code]; ok {
			if ae.Err != nil {
				log.Warn().
					Err(ae.Err).
					Str("code", string(ae.Code)).
					Str("path", c.Path()).
					Msg("request failed")
			}
			return status, ae.Message
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/casedesk/session-guard/internal/core/domain"
)

func runErrorHandler(t *testing.T, log zerolog.Logger, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	NewHTTPErrorHandler(log)(err, e.NewContext(req, rec))
	return rec
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.ValidationError("email is required"), http.StatusBadRequest, "email is required"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{domain.ErrDuplicateUser, http.StatusConflict, "user already exists"},
		{domain.ErrTokenInvalid, http.StatusUnauthorized, "token verification failed"},
		{domain.ErrNotAuthenticated, http.StatusUnauthorized, "not authenticated"},
		{domain.StorageError(errors.New("redis down")), http.StatusServiceUnavailable, "session storage unavailable"},
		{domain.InternalError(errors.New("boom")), http.StatusInternalServerError, "internal server error"},
		{errors.New("surprise"), http.StatusInternalServerError, "internal server error"},
		{echo.NewHTTPError(http.StatusForbidden, "forbidden"), http.StatusForbidden, "forbidden"},
	}
	for _, tc := range cases {
		rec := runErrorHandler(t, zerolog.Nop(), tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body["success"] != false || body["error"] != tc.msg {
			t.Fatalf("%v: unexpected body %v", tc.err, body)
		}
	}
}

func TestHTTPErrorHandler_RetryAfter(t *testing.T) {
	rec := runErrorHandler(t, zerolog.Nop(), domain.RateLimitedError(42))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "42" {
		t.Fatalf("expected Retry-After 42, got %q", got)
	}
}

func TestHTTPErrorHandler_LogsUnexpected(t *testing.T) {
	var buf bytes.Buffer
	runErrorHandler(t, zerolog.New(&buf), errors.New("db exploded"))

	if !strings.Contains(buf.String(), "db exploded") {
		t.Fatalf("expected cause in logs, got %q", buf.String())
	}
}

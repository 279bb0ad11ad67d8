package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/casedesk/session-guard/internal/core/audit"
	"github.com/casedesk/session-guard/internal/core/domain"
)

func newRBACContext(role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(ClaimsKey, domain.Claims{domain.ClaimUserID: "u1", domain.ClaimRole: role})
	}
	return c, rec
}

func TestRBAC_Allows(t *testing.T) {
	for _, role := range []string{domain.RoleUser, domain.RoleAdmin} {
		c, rec := newRBACContext(role)

		called := false
		handler := RBAC(nil, domain.RoleUser)(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})

		if err := handler(c); err != nil {
			t.Fatalf("%s: handler error: %v", role, err)
		}
		if !called || rec.Code != http.StatusOK {
			t.Fatalf("%s: next handler not called", role)
		}
	}
}

func TestRBAC_Forbids(t *testing.T) {
	auditLog := audit.New(10)

	for _, role := range []string{domain.RoleUser, ""} {
		c, _ := newRBACContext(role)
		handler := RBAC(auditLog, domain.RoleAdmin)(func(c echo.Context) error {
			t.Fatalf("should not reach next handler")
			return nil
		})

		err := handler(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusForbidden {
			t.Fatalf("%q: expected 403, got %v", role, err)
		}
	}

	if got := len(auditLog.Events(audit.EventAccessDenied)); got != 2 {
		t.Fatalf("expected 2 access_denied events, got %d", got)
	}
}

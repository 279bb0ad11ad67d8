package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casedesk/session-guard/internal/core/audit"
	"github.com/casedesk/session-guard/internal/core/ports"
)

// RBAC lets the request through when the authenticated user holds any of
// the allowed roles. Admins hold every role. Denials are audited when
// auditLog is non-nil.
func RBAC(auditLog ports.AuditLogger, allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := Claims(c)
			for _, role := range allowedRoles {
				if claims.HasRole(role) {
					return next(c)
				}
			}

			if auditLog != nil {
				auditLog.Log(audit.EventAccessDenied, map[string]any{
					"userId": claims.UserID(),
					"path":   c.Path(),
				})
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}

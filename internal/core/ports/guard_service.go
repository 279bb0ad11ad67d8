package ports

import (
	"context"

	"github.com/casedesk/session-guard/internal/core/domain"
)

// RateLimiter decides whether another attempt for key is allowed right now.
type RateLimiter interface {
	Check(ctx context.Context, key string) (domain.RateLimitResult, error)
	Reset(ctx context.Context, key string) error
}

// AuditLogger records security events.
type AuditLogger interface {
	Log(eventType string, detail map[string]any)
}

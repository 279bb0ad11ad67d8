package ports

import (
	"context"

	"github.com/casedesk/session-guard/internal/core/domain"
)

// UserRepository defines the interface for user record persistence.
// Emails are compared in their sanitized, lower-cased form.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// PasswordHasher turns passwords into stored hashes and compares them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/ports"
)

// SeedUser describes an account created at startup.
type SeedUser struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// DemoUsers are the accounts the demo ships with.
var DemoUsers = []SeedUser{
	{Name: "Demo Admin", Email: "demo@example.com", Password: "demo123", Role: domain.RoleAdmin},
	{Name: "Demo User", Email: "user@example.com", Password: "user123", Role: domain.RoleUser},
}

// SeedUsers creates every seed account that does not exist yet and returns
// how many were created.
func SeedUsers(ctx context.Context, users ports.UserRepository, hasher ports.PasswordHasher, seeds []SeedUser) (int, error) {
	created := 0
	for _, s := range seeds {
		_, err := users.FindByEmail(ctx, s.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return created, fmt.Errorf("seed %s: %w", s.Email, err)
		}

		hash, err := hasher.Hash(s.Password)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", s.Email, err)
		}
		_, err = users.Create(ctx, &domain.User{
			ID:           uuid.NewString(),
			Name:         s.Name,
			Email:        s.Email,
			PasswordHash: hash,
			Role:         s.Role,
			CreatedAt:    time.Now().UTC(),
		})
		switch {
		case errors.Is(err, domain.ErrUserExists):
			continue
		case err != nil:
			return created, fmt.Errorf("seed %s: %w", s.Email, err)
		}
		created++
	}
	return created, nil
}

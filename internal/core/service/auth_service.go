package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/casedesk/session-guard/internal/core/audit"
	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/guard"
	"github.com/casedesk/session-guard/internal/core/ports"
	"github.com/casedesk/session-guard/internal/core/token"
)

// RefreshExpiresIn is the lifetime of a refreshed token.
const RefreshExpiresIn = "24h"

const maxNameLength = 100

// SessionManager implements login, registration and token refresh without
// holding any per-client state. Session builds the stateful client
// lifecycle on top of it; the HTTP handlers use it directly.
type SessionManager struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	codec     *token.Codec
	limiter   ports.RateLimiter
	audit     ports.AuditLogger
	expiresIn string
	log       zerolog.Logger
}

type ManagerOption func(*SessionManager)

// WithExpiresIn sets the lifetime of tokens issued at login and
// registration, in token.ParseExpiresIn syntax.
func WithExpiresIn(expiresIn string) ManagerOption {
	return func(m *SessionManager) {
		if expiresIn != "" {
			m.expiresIn = expiresIn
		}
	}
}

func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *SessionManager) { m.log = log }
}

func NewSessionManager(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	codec *token.Codec,
	limiter ports.RateLimiter,
	auditLog ports.AuditLogger,
	opts ...ManagerOption,
) *SessionManager {
	m := &SessionManager{
		users:     users,
		hasher:    hasher,
		codec:     codec,
		limiter:   limiter,
		audit:     auditLog,
		expiresIn: "24h",
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authenticate checks credentials and issues a token. The rate limiter is
// consulted before any credential is looked at, and its bucket is cleared
// before a successful result is returned.
func (m *SessionManager) Authenticate(ctx context.Context, req ports.LoginRequest) (*ports.AuthResult, error) {
	key := req.ClientKey
	if key == "" {
		key = guard.NormalizeEmail(req.Email)
	}

	limit, err := m.limiter.Check(ctx, key)
	if err != nil {
		m.log.Error().Err(err).Str("key", key).Msg("rate limiter unavailable")
		m.audit.Log(audit.EventStorageFailure, map[string]any{"operation": "rate_limit_check"})
		return nil, domain.StorageError(err)
	}
	if !limit.Allowed {
		m.audit.Log(audit.EventRateLimited, map[string]any{
			"key":        key,
			"retryAfter": limit.RetryAfter,
		})
		return nil, domain.RateLimitedError(limit.RetryAfter)
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		m.audit.Log(audit.EventLoginFailed, map[string]any{"reason": "missing_fields"})
		return nil, domain.ValidationError("email and password are required")
	}

	email := guard.ValidateEmail(req.Email)
	if !email.Valid {
		m.audit.Log(audit.EventLoginFailed, map[string]any{"reason": "invalid_email"})
		return nil, domain.ErrInvalidCredentials
	}

	user, err := m.users.FindByEmail(ctx, email.Sanitized)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		m.audit.Log(audit.EventLoginFailed, map[string]any{"email": email.Sanitized, "reason": "invalid_credentials"})
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		m.log.Error().Err(err).Msg("user lookup failed")
		m.audit.Log(audit.EventStorageFailure, map[string]any{"operation": "find_user"})
		return nil, domain.StorageError(err)
	}

	if !m.hasher.Compare(user.PasswordHash, req.Password) {
		m.audit.Log(audit.EventLoginFailed, map[string]any{"email": email.Sanitized, "reason": "invalid_credentials"})
		return nil, domain.ErrInvalidCredentials
	}

	tok, err := m.codec.Issue(user.Claims(), m.expiresIn)
	if err != nil {
		m.log.Error().Err(err).Str("user_id", user.ID).Msg("token issue failed")
		return nil, domain.InternalError(err)
	}

	if err := m.limiter.Reset(ctx, key); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("rate limiter reset failed")
	}

	m.audit.Log(audit.EventLoginSuccess, map[string]any{"userId": user.ID, "email": user.Email})
	return &ports.AuthResult{Token: tok, User: user.Public()}, nil
}

// Register creates a user with role "user" and issues a token for it.
func (m *SessionManager) Register(ctx context.Context, profile ports.Profile) (*ports.AuthResult, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Email = strings.TrimSpace(profile.Email)

	if err := guard.ValidateStruct(profile); err != nil {
		m.audit.Log(audit.EventRegisterFailed, map[string]any{"reason": "validation"})
		return nil, domain.ValidationError(err.Error())
	}

	email := guard.ValidateEmail(profile.Email)
	if !email.Valid {
		m.audit.Log(audit.EventRegisterFailed, map[string]any{"reason": "invalid_email"})
		return nil, domain.ValidationError(email.Err.Error())
	}

	_, err := m.users.FindByEmail(ctx, email.Sanitized)
	switch {
	case err == nil:
		m.audit.Log(audit.EventRegisterFailed, map[string]any{"email": email.Sanitized, "reason": "duplicate"})
		return nil, domain.ErrDuplicateUser
	case !errors.Is(err, domain.ErrUserNotFound):
		m.log.Error().Err(err).Msg("user lookup failed")
		m.audit.Log(audit.EventStorageFailure, map[string]any{"operation": "find_user"})
		return nil, domain.StorageError(err)
	}

	hash, err := m.hasher.Hash(profile.Password)
	if err != nil {
		return nil, domain.InternalError(err)
	}

	created, err := m.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Name:         guard.SanitizeInput(profile.Name, guard.MaxLength(maxNameLength)),
		Email:        email.Sanitized,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    m.codec.Now().UTC(),
	})
	switch {
	case errors.Is(err, domain.ErrUserExists):
		m.audit.Log(audit.EventRegisterFailed, map[string]any{"email": email.Sanitized, "reason": "duplicate"})
		return nil, domain.ErrDuplicateUser
	case err != nil:
		m.log.Error().Err(err).Msg("user create failed")
		m.audit.Log(audit.EventStorageFailure, map[string]any{"operation": "create_user"})
		return nil, domain.StorageError(err)
	}

	tok, err := m.codec.Issue(created.Claims(), m.expiresIn)
	if err != nil {
		m.log.Error().Err(err).Str("user_id", created.ID).Msg("token issue failed")
		return nil, domain.InternalError(err)
	}

	m.audit.Log(audit.EventRegisterSuccess, map[string]any{"userId": created.ID, "email": created.Email})
	return &ports.AuthResult{Token: tok, User: created.Public()}, nil
}

// Refresh re-issues tok with the same identity claims and a fresh 24h
// expiry.
func (m *SessionManager) Refresh(_ context.Context, tok string) (string, error) {
	claims, err := m.codec.Verify(tok)
	if err != nil {
		m.audit.Log(audit.EventTokenInvalid, map[string]any{"operation": "refresh"})
		return "", err
	}

	fresh, err := m.codec.Issue(claims.WithoutTimestamps(), RefreshExpiresIn)
	if err != nil {
		return "", domain.InternalError(err)
	}

	m.audit.Log(audit.EventTokenRefreshed, map[string]any{"userId": claims.UserID()})
	return fresh, nil
}

// Verify returns the payload of a current token.
func (m *SessionManager) Verify(tok string) (domain.Claims, error) {
	return m.codec.Verify(tok)
}

// Inspect reports the timing of a well-formed token, expired or not.
func (m *SessionManager) Inspect(tok string) (domain.TokenInfo, error) {
	return m.codec.Inspect(tok)
}

// Revoke records a server-side logout. Tokens are self-contained, so there
// is nothing to delete; the client discards its copy.
func (m *SessionManager) Revoke(_ context.Context, tok string) {
	detail := map[string]any{}
	if claims, err := m.codec.Verify(tok); err == nil {
		detail["userId"] = claims.UserID()
	}
	m.audit.Log(audit.EventLogout, detail)
}

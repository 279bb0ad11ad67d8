package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/casedesk/session-guard/internal/core/audit"
	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/ports"
)

// TokenKey is the store key holding the current session token.
const TokenKey = "casedesk_token"

const (
	// MinWatchInterval is the finest resolution of the expiry watcher.
	MinWatchInterval = time.Minute
	// RefreshThreshold is how close to expiry the watcher refreshes.
	RefreshThreshold = time.Hour
)

// State is the authentication state of a Session.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is one client's view of the session lifecycle. It persists the
// current token in the injected store and owns the expiry watcher that
// refreshes or ends the session as the token ages.
type Session struct {
	mu       sync.Mutex
	manager  *SessionManager
	store    ports.KeyValueStore
	token    string
	claims   domain.Claims
	watcher  *expiryWatcher
	interval time.Duration
	log      zerolog.Logger
}

type SessionOption func(*Session)

// WithWatchInterval sets the expiry watcher poll interval. Values below
// MinWatchInterval are raised to it.
func WithWatchInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		if d < MinWatchInterval {
			d = MinWatchInterval
		}
		s.interval = d
	}
}

func WithSessionLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// NewSession creates an unauthenticated session backed by store. Call
// Restore to pick up a previously persisted token.
func (m *SessionManager) NewSession(store ports.KeyValueStore, opts ...SessionOption) *Session {
	s := &Session{
		manager:  m,
		store:    store,
		interval: MinWatchInterval,
		log:      m.log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore re-establishes the session from the stored token. It returns
// domain.ErrNotAuthenticated when nothing is stored and
// domain.ErrTokenInvalid when the stored token no longer verifies, in which
// case the stale token is removed.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		s.log.Error().Err(err).Msg("read stored token")
		return domain.StorageError(err)
	}
	if !ok || tok == "" {
		return domain.ErrNotAuthenticated
	}

	claims, err := s.manager.Verify(tok)
	if err != nil {
		if rmErr := s.store.Remove(ctx, TokenKey); rmErr != nil {
			s.log.Warn().Err(rmErr).Msg("remove stale token")
		}
		s.manager.audit.Log(audit.EventTokenInvalid, map[string]any{"operation": "restore"})
		return err
	}

	s.authenticateLocked(tok, claims)
	s.manager.audit.Log(audit.EventSessionRestored, map[string]any{"userId": claims.UserID()})
	return nil
}

// Login authenticates against the user store and, on success, persists the
// issued token and moves the session to Authenticated.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.PublicUser, error) {
	res, err := s.manager.Authenticate(ctx, ports.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := s.adopt(ctx, res.Token); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Register creates an account and signs the session into it.
func (s *Session) Register(ctx context.Context, profile ports.Profile) (*domain.PublicUser, error) {
	res, err := s.manager.Register(ctx, profile)
	if err != nil {
		return nil, err
	}
	if err := s.adopt(ctx, res.Token); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Logout clears the stored token and stops the watcher. It is idempotent.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked(ctx, audit.EventLogout)
}

// RefreshToken replaces the current token with a freshly issued one carrying
// the same identity. When the current token no longer verifies the session
// is logged out and false is returned.
func (s *Session) RefreshToken(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return false
	}
	// A watcher tick may hand in its own context, which the logout below
	// cancels before the store is touched.
	ctx = context.WithoutCancel(ctx)

	fresh, err := s.manager.Refresh(ctx, s.token)
	if err != nil {
		s.logoutLocked(ctx, audit.EventSessionExpired)
		return false
	}

	claims, err := s.manager.Verify(fresh)
	if err != nil {
		s.log.Error().Err(err).Msg("refreshed token does not verify")
		return false
	}
	if err := s.store.Set(ctx, TokenKey, fresh); err != nil {
		s.log.Error().Err(err).Msg("persist refreshed token")
		return false
	}

	s.token = fresh
	s.claims = claims
	return true
}

// TokenInfo reports the timing of the current token. ok is false when the
// session holds no well-formed token.
func (s *Session) TokenInfo() (info domain.TokenInfo, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return domain.TokenInfo{}, false
	}
	info, err := s.manager.Inspect(s.token)
	if err != nil {
		return domain.TokenInfo{}, false
	}
	return info, true
}

// HasRole reports whether the current user holds role. Admins hold all
// roles.
func (s *Session) HasRole(role string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims.HasRole(role)
}

// CurrentUser returns a copy of the authenticated claims.
func (s *Session) CurrentUser() (domain.Claims, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return nil, false
	}
	return s.claims.Clone(), true
}

// Token returns the current token, or "".
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return Unauthenticated
	}
	return Authenticated
}

// Close stops the expiry watcher and waits for it to exit. The stored token
// is left in place so a later Restore can resume the session.
func (s *Session) Close() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		w.stop()
		w.wait()
	}
}

func (s *Session) adopt(ctx context.Context, tok string) error {
	claims, err := s.manager.Verify(tok)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, TokenKey, tok); err != nil {
		s.log.Error().Err(err).Msg("persist token")
		s.manager.audit.Log(audit.EventStorageFailure, map[string]any{"operation": "persist_token"})
		return domain.StorageError(err)
	}
	s.authenticateLocked(tok, claims)
	return nil
}

func (s *Session) authenticateLocked(tok string, claims domain.Claims) {
	if s.watcher != nil {
		s.watcher.stop()
	}
	s.token = tok
	s.claims = claims
	s.watcher = startExpiryWatcher(s.interval, s.checkExpiry)
}

func (s *Session) logoutLocked(ctx context.Context, reason string) {
	// Stopping the watcher cancels its context, and the tick may be running
	// under it.
	ctx = context.WithoutCancel(ctx)
	if s.watcher != nil {
		s.watcher.stop()
		s.watcher = nil
	}
	if err := s.store.Remove(ctx, TokenKey); err != nil {
		s.log.Warn().Err(err).Msg("remove stored token")
	}
	if s.token == "" {
		return
	}

	userID := s.claims.UserID()
	s.token = ""
	s.claims = nil
	s.manager.audit.Log(reason, map[string]any{"userId": userID})
}

// checkExpiry is the watcher tick: it ends an expired session and refreshes
// one that is about to expire. ctx is the watcher's own context; once it is
// cancelled the tick belongs to a stopped watcher and must not act.
func (s *Session) checkExpiry(ctx context.Context) {
	s.mu.Lock()
	if ctx.Err() != nil || s.token == "" {
		s.mu.Unlock()
		return
	}

	info, err := s.manager.Inspect(s.token)
	if err != nil || info.TimeUntilExpiry <= 0 {
		s.logoutLocked(ctx, audit.EventSessionExpired)
		s.mu.Unlock()
		return
	}
	refresh := info.Remaining() < RefreshThreshold
	s.mu.Unlock()

	if refresh && !s.RefreshToken(ctx) {
		s.log.Warn().Msg("proactive token refresh failed")
	}
}

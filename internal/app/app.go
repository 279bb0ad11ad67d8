// Package app composes the session service from configuration: it picks the
// signer, hasher, store, user repository and limiter backends and connects
// to Redis and MongoDB when a backend needs them.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/casedesk/session-guard/internal/api/handler"
	"github.com/casedesk/session-guard/internal/api/metrics"
	"github.com/casedesk/session-guard/internal/core/audit"
	"github.com/casedesk/session-guard/internal/core/guard"
	"github.com/casedesk/session-guard/internal/core/ports"
	"github.com/casedesk/session-guard/internal/core/ratelimit"
	"github.com/casedesk/session-guard/internal/core/service"
	"github.com/casedesk/session-guard/internal/core/token"
	"github.com/casedesk/session-guard/internal/infrastructure/config"
	"github.com/casedesk/session-guard/internal/infrastructure/db/kvstore"
	mongodb "github.com/casedesk/session-guard/internal/infrastructure/db/mongo"
	redisdb "github.com/casedesk/session-guard/internal/infrastructure/db/redis"
	"github.com/casedesk/session-guard/pkg/logger"
)

// App holds the wired components. Close releases backend connections.
type App struct {
	Config       *config.Config
	Manager      *service.SessionManager
	Audit        *audit.Log
	Store        ports.KeyValueStore
	Users        ports.UserRepository
	Dependencies []handler.Dependency

	closers []func(context.Context) error
}

// Build wires every component described by cfg.
func Build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	log := logger.Component("app")

	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}
	hasher := newHasher(cfg)

	backends, err := a.connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := newStore(cfg, backends)
	if err != nil {
		return nil, err
	}
	a.Store = metrics.InstrumentStore(store, cfg.Session.Backend)

	if cfg.Session.Backend == config.BackendMongo {
		users := mongodb.NewUserRepository(backends.mongo)
		if err := users.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		a.Users = users
	} else {
		a.Users = kvstore.NewUserRepository(a.Store)
	}

	var limiter ports.RateLimiter
	if cfg.RateLimit.Backend == config.BackendRedis {
		limiter = redisdb.NewLimiter(backends.redis, cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	} else {
		limiter = ratelimit.New(cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	}
	limiter = metrics.InstrumentLimiter(limiter, cfg.RateLimit.Backend)

	a.Audit = audit.New(cfg.AuditCapacity,
		audit.WithLogger(logger.Component("audit")),
		audit.WithObserver(metrics.ObserveAuditEvent),
	)

	a.Manager = service.NewSessionManager(a.Users, hasher, codec, limiter, a.Audit,
		service.WithExpiresIn(cfg.Token.ExpiresIn),
		service.WithLogger(logger.Component("session")),
	)

	if cfg.SeedDemoUsers {
		n, err := service.SeedUsers(ctx, a.Users, hasher, service.DemoUsers)
		if err != nil {
			return nil, fmt.Errorf("seed demo users: %w", err)
		}
		if n > 0 {
			log.Info().Int("count", n).Msg("demo users seeded")
		}
	}

	log.Info().
		Str("store", cfg.Session.Backend).
		Str("rate_limit", cfg.RateLimit.Backend).
		Str("signer", cfg.Token.Signer).
		Str("hasher", cfg.PasswordHasher).
		Msg("session service wired")

	return a, nil
}

// NewSession creates a client session over the configured store.
func (a *App) NewSession(log zerolog.Logger) *service.Session {
	return a.Manager.NewSession(a.Store,
		service.WithWatchInterval(a.Config.Session.WatchInterval),
		service.WithSessionLogger(log),
	)
}

// Close releases backend connections in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newCodec(cfg *config.Config) (*token.Codec, error) {
	var signer token.Signer
	switch cfg.Token.Signer {
	case config.SignerHMAC:
		s, err := token.NewHMACSigner(cfg.Token.Secret)
		if err != nil {
			return nil, fmt.Errorf("hmac signer: %w", err)
		}
		signer = s
	default:
		signer = token.NewDemoSigner(cfg.Token.Secret)
	}

	return token.NewCodec(signer,
		token.WithIssuer(cfg.Token.Issuer),
		token.WithAudience(cfg.Token.Audience),
		token.WithLogger(logger.Component("token")),
	), nil
}

func newHasher(cfg *config.Config) ports.PasswordHasher {
	if cfg.PasswordHasher == config.HasherBcrypt {
		return guard.NewBcryptHasher(bcrypt.DefaultCost)
	}
	return guard.NewDemoHasher(cfg.Token.Secret)
}

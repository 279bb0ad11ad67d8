package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/casedesk/session-guard/internal/api/handler"
	"github.com/casedesk/session-guard/internal/core/ports"
	"github.com/casedesk/session-guard/internal/infrastructure/config"
	"github.com/casedesk/session-guard/internal/infrastructure/db/kvstore"
	mongodb "github.com/casedesk/session-guard/internal/infrastructure/db/mongo"
	redisdb "github.com/casedesk/session-guard/internal/infrastructure/db/redis"
)

type backends struct {
	redis *redis.Client
	mongo *mongo.Database
}

// connect opens the connections cfg needs and registers them for readiness
// checks and Close.
func (a *App) connect(ctx context.Context, cfg *config.Config) (backends, error) {
	var b backends

	if cfg.NeedsRedis() {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return b, err
		}
		b.redis = client
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		a.Dependencies = append(a.Dependencies, handler.Dependency{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisdb.Ping(ctx, client, 0) },
		})
	}

	if cfg.NeedsMongo() {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return b, err
		}
		b.mongo = db
		a.closers = append(a.closers, client.Disconnect)
		a.Dependencies = append(a.Dependencies, handler.Dependency{
			Name: "mongodb",
			Ping: func(ctx context.Context) error { return mongodb.Ping(ctx, db) },
		})
	}

	return b, nil
}

func newStore(cfg *config.Config, b backends) (ports.KeyValueStore, error) {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return kvstore.NewMemoryStore(), nil
	case config.BackendFile:
		return kvstore.NewFileStore(cfg.Session.File), nil
	case config.BackendRedis:
		return redisdb.NewStore(b.redis), nil
	case config.BackendMongo:
		return mongodb.NewStore(b.mongo), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Session.Backend)
	}
}

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage and signing backends selectable at startup.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendFile   = "file"

	SignerDemo = "demo"
	SignerHMAC = "hmac"

	HasherDemo   = "demo"
	HasherBcrypt = "bcrypt"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Token     TokenConfig
	RateLimit RateLimitConfig
	Session   SessionConfig

	PasswordHasher string `env:"PASSWORD_HASHER, default=demo"`
	AuditCapacity  int    `env:"AUDIT_CAPACITY,  default=100"`
	SeedDemoUsers  bool   `env:"SEED_DEMO_USERS, default=true"`

	Mongo MongoConfig
	Redis RedisConfig
}

type TokenConfig struct {
	Secret    string `env:"TOKEN_SECRET,     default=casedesk-demo-secret"`
	Signer    string `env:"TOKEN_SIGNER,     default=demo"`
	ExpiresIn string `env:"TOKEN_EXPIRES_IN, default=24h"`
	Issuer    string `env:"TOKEN_ISSUER,     default=casedesk"`
	Audience  string `env:"TOKEN_AUDIENCE,   default=casedesk-app"`
}

type RateLimitConfig struct {
	MaxAttempts int           `env:"RATE_LIMIT_MAX_ATTEMPTS, default=5"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW,       default=15m"`
	Backend     string        `env:"RATE_LIMIT_BACKEND,      default=memory"`
}

type SessionConfig struct {
	Backend       string        `env:"STORE_BACKEND,          default=memory"`
	File          string        `env:"STORE_FILE,             default=.casedesk-session.json"`
	WatchInterval time.Duration `env:"SESSION_WATCH_INTERVAL, default=1m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=casedesk"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l, which lets tests supply a
// envconfig.MapLookuper instead of touching the environment.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// NeedsRedis reports whether any configured backend talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Session.Backend == BackendRedis || c.RateLimit.Backend == BackendRedis
}

// NeedsMongo reports whether the session store lives in MongoDB.
func (c *Config) NeedsMongo() bool {
	return c.Session.Backend == BackendMongo
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case BackendMemory, BackendRedis, BackendMongo, BackendFile:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Session.Backend)
	}
	switch c.RateLimit.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend)
	}
	switch c.Token.Signer {
	case SignerDemo, SignerHMAC:
	default:
		return fmt.Errorf("unknown TOKEN_SIGNER %q", c.Token.Signer)
	}
	switch c.PasswordHasher {
	case HasherDemo, HasherBcrypt:
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", c.PasswordHasher)
	}
	if c.Token.Signer == SignerHMAC && c.Token.Secret == "" {
		return fmt.Errorf("TOKEN_SECRET is required for the hmac signer")
	}
	return nil
}

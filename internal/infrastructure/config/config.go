package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Session store backends.
const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=3020"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// PublicDir holds the static assets (vegetable pictures). Empty disables static serving.
	PublicDir string `env:"PUBLIC_DIR, default=public"`

	// SubmitRateLimit is the per-IP request rate allowed on form submissions, in req/s. 0 disables it.
	SubmitRateLimit float64 `env:"SUBMIT_RATE_LIMIT, default=5"`

	Session SessionConfig
	Hashing HashingConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	Secret     string        `env:"SESSION_SECRET"`
	Lifetime   time.Duration `env:"SESSION_LIFETIME, default=1h"`
	Backend    string        `env:"SESSION_BACKEND,  default=redis"`
	CookieName string        `env:"SESSION_COOKIE,   default=members.sid"`
}

type HashingConfig struct {
	Cost    int `env:"BCRYPT_COST,  default=12"`
	Workers int `env:"HASH_WORKERS, default=0"`
}

type MongoConfig struct {
	URI             string `env:"MONGO_URI"`
	Host            string `env:"MONGODB_HOST"`
	User            string `env:"MONGODB_USER"`
	Password        string `env:"MONGODB_PASSWORD"`
	Database        string `env:"MONGO_DB,               default=members"`
	UsersCollection string `env:"MONGO_USERS_COLLECTION, default=users"`
}

type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR,       default=localhost:6379"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB,         default=0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX, default=sess:"`
}

// ConnectionURI returns MONGO_URI when set. Otherwise it builds an SRV URI
// from the MONGODB_HOST/USER/PASSWORD triple, and falls back to a local server.
func (m MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	if m.Host == "" {
		return "mongodb://localhost:27017"
	}
	u := url.URL{
		Scheme: "mongodb+srv",
		Host:   m.Host,
		Path:   "/" + m.Database,
	}
	if m.User != "" {
		u.User = url.UserPassword(m.User, m.Password)
	}
	return u.String()
}

// Production reports whether the service runs with production settings.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.Session.Lifetime <= 0 {
		return fmt.Errorf("SESSION_LIFETIME must be positive, got %s", c.Session.Lifetime)
	}
	switch c.Session.Backend {
	case SessionBackendRedis, SessionBackendMemory:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", SessionBackendRedis, SessionBackendMemory, c.Session.Backend)
	}
	if c.Hashing.Cost < bcrypt.MinCost || c.Hashing.Cost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Hashing.Cost)
	}
	if c.SubmitRateLimit < 0 {
		return fmt.Errorf("SUBMIT_RATE_LIMIT must not be negative, got %v", c.SubmitRateLimit)
	}
	return nil
}

// Load reads an optional .env file, then the environment, using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from the given lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

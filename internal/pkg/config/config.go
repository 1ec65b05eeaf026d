package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/clothify/storefront/internal/core/domain"
)

// MinProductionSecretBytes is the shortest signing secret accepted when
// ENV=production.
const MinProductionSecretBytes = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	AMQP  AMQPConfig
	Audit AuditConfig
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,       default=168h"`
	TokenIssuer   string        `env:"TOKEN_ISSUER,    default=storefront"`
	BcryptCost    int           `env:"BCRYPT_COST,     default=12"`
	SessionCookie string        `env:"SESSION_COOKIE,  default=storefront_session"`
	CookieSecure  bool          `env:"COOKIE_SECURE,   default=false"`
	RateLimit     int           `env:"AUTH_RATE_LIMIT, default=20"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// AMQPConfig is optional; an empty URL disables event publishing.
type AMQPConfig struct {
	URL string `env:"AMQP_URL"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate enforces the settings the service cannot start without.
func (c *Config) Validate() error {
	secret := c.Auth.JWTSecret
	switch {
	case strings.TrimSpace(secret) == "":
		return fmt.Errorf("%w: JWT_SECRET is required", domain.ErrConfiguration)
	case c.IsProduction() && len(secret) < MinProductionSecretBytes:
		return fmt.Errorf("%w: JWT_SECRET must be at least %d bytes in production",
			domain.ErrConfiguration, MinProductionSecretBytes)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", domain.ErrConfiguration)
	}
	if c.Auth.RateLimit <= 0 {
		return fmt.Errorf("%w: AUTH_RATE_LIMIT must be positive", domain.ErrConfiguration)
	}
	return nil
}

// Load reads an optional .env file, then the environment, and validates the
// result.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

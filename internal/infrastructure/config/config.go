package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/altdap/identity-service/internal/core/domain"
	"github.com/altdap/identity-service/internal/pkg/secrets"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT   JWTConfig
	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type JWTConfig struct {
	// AccessSecret has no default: the process refuses to start without it.
	AccessSecret string `env:"JWT_ACCESS_SECRET"`
	AccessTTL    string `env:"JWT_ACCESS_TTL,  default=15m"`
	RefreshTTL   string `env:"JWT_REFRESH_TTL, default=7d"`
}

type AuthConfig struct {
	BcryptCost     int    `env:"BCRYPT_COST,  default=11"`
	HashWorkers    int    `env:"HASH_WORKERS, default=4"`
	ResetTokenTTL  string `env:"RESET_TOKEN_TTL,  default=1h"`
	VerifyTokenTTL string `env:"VERIFY_TOKEN_TTL, default=24h"`
	ConsentSecret  string `env:"CONSENT_APPROVAL_SECRET, default=dev-consent-secret"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=altdap_identity"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate fails fast on anything the process cannot serve without. The
// signing secret in particular must exist before the first request.
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("config: JWT_ACCESS_SECRET: %w", domain.ErrConfigurationMissing)
	}
	for name, spec := range map[string]string{
		"JWT_ACCESS_TTL":   c.JWT.AccessTTL,
		"JWT_REFRESH_TTL":  c.JWT.RefreshTTL,
		"RESET_TOKEN_TTL":  c.Auth.ResetTokenTTL,
		"VERIFY_TOKEN_TTL": c.Auth.VerifyTokenTTL,
	} {
		if _, err := secrets.ParseDuration(spec); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	return nil
}

// AccessTTL returns the parsed access-token lifetime. Call Validate first.
func (c *Config) AccessTTL() time.Duration {
	d, _ := secrets.ParseDuration(c.JWT.AccessTTL)
	return d
}

func (c *Config) RefreshTTL() time.Duration {
	d, _ := secrets.ParseDuration(c.JWT.RefreshTTL)
	return d
}

func (c *Config) ResetTokenTTL() time.Duration {
	d, _ := secrets.ParseDuration(c.Auth.ResetTokenTTL)
	return d
}

func (c *Config) VerifyTokenTTL() time.Duration {
	d, _ := secrets.ParseDuration(c.Auth.VerifyTokenTTL)
	return d
}

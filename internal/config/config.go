// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/cache"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/database"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/utilities"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR,default=0.0.0.0:8431"`
	Env      string `env:"APP_ENV,default=production"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=24h"`
	JWTIssuer string        `env:"JWT_ISSUER,default=mfo-admin"`

	BcryptCost    int   `env:"BCRYPT_COST,default=12"`
	SnowflakeNode int64 `env:"SNOWFLAKE_NODE,default=1"`

	MigrateOnStart bool `env:"MIGRATE_ON_START,default=true"`

	CORSOrigins   string  `env:"CORS_ORIGINS"`
	AuthRate      float64 `env:"AUTH_RATE_PER_SEC,default=1"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST,default=5"`

	AnalyticsTimezone string        `env:"ANALYTICS_TIMEZONE,default=UTC"`
	AnalyticsCacheTTL time.Duration `env:"ANALYTICS_CACHE_TTL,default=0s"`

	MetricsNamespace string `env:"METRICS_NAMESPACE,default=mfo_admin"`

	Database database.Config
	Log      utilities.Config
	Redis    cache.Config
}

// maxSnowflakeNode is the largest node id with snowflake's default 10 node bits.
const maxSnowflakeNode = 1023

// devSecret signs tokens when APP_ENV=development and no secret is set.
const devSecret = "development-only-secret"

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// best effort: a missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Development() bool { return c.Env == "development" }

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if !c.Development() {
			return errors.New("JWT_SECRET is required")
		}
		c.JWTSecret = devSecret
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.SnowflakeNode < 0 || c.SnowflakeNode > maxSnowflakeNode {
		return fmt.Errorf("SNOWFLAKE_NODE must be between 0 and %d", maxSnowflakeNode)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Database.Driver {
	case database.DriverPostgres, database.DriverPgx, database.DriverSQLite, database.DriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	return nil
}

// Location resolves ANALYTICS_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.AnalyticsTimezone)
	if err != nil {
		return nil, fmt.Errorf("ANALYTICS_TIMEZONE: %w", err)
	}
	return loc, nil
}

// Origins splits CORS_ORIGINS on commas. An empty result disables CORS.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

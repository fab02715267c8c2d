package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string          `env:"APP_NAME" envDefault:"SwiftPay"`
	Env             string          `env:"APP_ENV" envDefault:"development"`
	Port            string          `env:"PORT" envDefault:"8080"`
	LogLevel        string          `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string          `env:"LOG_FORMAT" envDefault:"json"`
	StoreDriver     string          `env:"STORE_DRIVER" envDefault:"memory"`
	DatabaseURL     string          `env:"DATABASE_URL"`
	RedisURL        string          `env:"REDIS_URL"`
	SQLitePath      string          `env:"SQLITE_PATH" envDefault:"swiftpay.db"`
	DBMaxConns      int32           `env:"DB_MAX_CONNS" envDefault:"10"`
	ConnectTimeout  time.Duration   `env:"CONNECT_TIMEOUT" envDefault:"5s"`
	ShutdownPeriod  time.Duration   `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdempotencyTTL  time.Duration   `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	JWTSecret       string          `env:"JWT_SECRET"`
	RefreshSecret   string          `env:"REFRESH_SECRET"`
	AccessTokenTTL  time.Duration   `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration   `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	StartingBalance decimal.Decimal `env:"STARTING_BALANCE" envDefault:"1000"`
	LoginRateLimit  int             `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	MetricsEnabled  bool            `env:"METRICS_ENABLED" envDefault:"true"`
	CORSOrigins     string          `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
}

// Load reads an optional .env file, then populates a Config from the environment.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when STORE_DRIVER=postgres")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when STORE_DRIVER=redis")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set when STORE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.StoreDriver)
	}

	if c.StartingBalance.IsNegative() {
		return fmt.Errorf("STARTING_BALANCE must not be negative")
	}

	if !c.IsDev() {
		if c.JWTSecret == "" || c.RefreshSecret == "" {
			return fmt.Errorf("JWT_SECRET and REFRESH_SECRET must be set when APP_ENV=%s", c.Env)
		}
		return nil
	}
	if c.JWTSecret == "" {
		c.JWTSecret = "dev-access-secret"
	}
	if c.RefreshSecret == "" {
		c.RefreshSecret = "dev-refresh-secret"
	}
	return nil
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/swiftpay/swiftpay/internal/config"
)

const defaultConnectTimeout = 5 * time.Second

// Clients holds the external connections opened for a configuration. Fields
// are nil when the configuration does not call for them.
type Clients struct {
	DB     *pgxpool.Pool
	Cache  *redis.Client
	SQLite *sql.DB
}

// Connect opens the backends required by cfg. Redis is opened whenever
// REDIS_URL is set since idempotency and rate limiting use it regardless of
// the record store driver.
func Connect(ctx context.Context, cfg config.Config) (*Clients, error) {
	c := &Clients{}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	if cfg.StoreDriver == config.DriverPostgres {
		db, err := openPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxConns, timeout)
		if err != nil {
			return nil, err
		}
		c.DB = db
	}

	if cfg.RedisURL != "" {
		cache, err := openRedis(ctx, cfg.RedisURL, timeout)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Cache = cache
	}

	if cfg.StoreDriver == config.DriverSQLite {
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.SQLite = db
	}

	return c, nil
}

// Close releases every opened client.
func (c *Clients) Close() error {
	var errs []error
	if c.DB != nil {
		c.DB.Close()
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.SQLite != nil {
		errs = append(errs, c.SQLite.Close())
	}
	return errors.Join(errs...)
}

func openPostgres(ctx context.Context, url string, maxConns int32, timeout time.Duration) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
	}
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute
	poolCfg.ConnConfig.ConnectTimeout = timeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := ping(ctx, timeout, pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func openRedis(ctx context.Context, url string, timeout time.Duration) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opt.DialTimeout == 0 {
		opt.DialTimeout = timeout
	}

	client := redis.NewClient(opt)
	if err := ping(ctx, timeout, func(ctx context.Context) error { return client.Ping(ctx).Err() }); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func ping(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(pingCtx)
}

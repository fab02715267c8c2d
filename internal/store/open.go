package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
)

// Backends carries the already-connected clients a driver may need.
type Backends struct {
	Postgres *pgxpool.Pool
	Redis    *redis.Client
	SQLite   *sql.DB
}

// Open selects the record store implementation for driver.
func Open(ctx context.Context, driver string, b Backends) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverPostgres:
		return NewPostgres(ctx, b.Postgres)
	case DriverRedis:
		return NewRedis(b.Redis)
	case DriverSQLite:
		return NewSQLite(ctx, b.SQLite)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

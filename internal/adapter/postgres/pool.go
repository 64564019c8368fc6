// Package postgres holds the shared PostgreSQL plumbing used by the card,
// subject and session repositories: pool setup, migrations, transactions
// and error translation.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/memorygym-backend/internal/config"
)

// sessionParams are set on every connection unless the DSN overrides them.
// Due times are compared in UTC.
var sessionParams = map[string]string{
	"application_name": "memorygym",
	"timezone":         "UTC",
}

// NewPool connects to cfg.DSN and pings once, so a bad DSN fails at startup
// instead of on the first review.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MinConns = min(cfg.MinConns, poolCfg.MaxConns)
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	params := poolCfg.ConnConfig.RuntimeParams
	for k, v := range sessionParams {
		if _, ok := params[k]; !ok {
			params[k] = v
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

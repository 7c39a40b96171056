// Package postgres stores the shop catalog in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/objtrack/internal/config"
	"github.com/cory-johannsen/objtrack/internal/game/shop"
)

// applicationName tags catalog connections in pg_stat_activity.
const applicationName = "objtrack"

// Pool is the connection pool behind the catalog repository.
type Pool struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPool connects to the catalog database and checks that it answers within
// cfg.ConnectTimeout.
//
// Precondition: cfg must pass DatabaseConfig.Validate.
// Postcondition: Returns a reachable Pool, or an error wrapping
// shop.ErrDataUnavailable. Nothing is left open on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = config.DefaultConnectTimeout
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, shop.Unavailable(fmt.Errorf("parsing database config: %w", err))
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.ConnectTimeout = timeout
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, shop.Unavailable(fmt.Errorf("creating connection pool: %w", err))
	}

	p := &Pool{pool: pool, timeout: timeout}
	if err := p.Health(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Health pings the database, giving up after the configured connect timeout.
//
// Postcondition: Returns nil, or an error wrapping shop.ErrDataUnavailable.
func (p *Pool) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return shop.Unavailable(fmt.Errorf("pinging catalog database: %w", err))
	}
	return nil
}

// Shops returns the catalog repository backed by this pool.
func (p *Pool) Shops() *ShopRepository {
	return NewShopRepository(p.pool)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}

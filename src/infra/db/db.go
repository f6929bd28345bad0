package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"

	"catalog/src/infra/config"
	"catalog/src/infra/logger"
)

// Options configures a DB.
type Options struct {
	Pool PoolConfig
	// HealthTimeout bounds the startup probe and HealthCheck.
	HealthTimeout time.Duration
	// DrainTimeout is the grace period Shutdown waits for in-flight leases.
	DrainTimeout time.Duration
	// Registerer receives the query and pool metrics. Nil disables metrics.
	Registerer prometheus.Registerer
}

// DB is the database access layer: a pool plus query execution,
// transactions, health checks and shutdown.
type DB struct {
	pool    *Pool
	opts    Options
	log     *slog.Logger
	metrics *metrics
}

// New connects to the database described by cfg and verifies it is
// reachable. A failed probe is returned as an error; the caller should not
// start serving.
func New(ctx context.Context, cfg config.DatabaseConfig, reg prometheus.Registerer, log *slog.Logger) (*DB, error) {
	connect, err := PgxConnector(cfg.DSN(), cfg.AcquireTimeout)
	if err != nil {
		return nil, err
	}

	d, err := Open(ctx, connect, Options{
		Pool: PoolConfig{
			MaxSize:        int32(cfg.MaxPoolSize),
			IdleTimeout:    cfg.IdleTimeout,
			AcquireTimeout: cfg.AcquireTimeout,
		},
		HealthTimeout: cfg.HealthTimeout,
		DrainTimeout:  cfg.DrainTimeout,
		Registerer:    reg,
	}, log)
	if err != nil {
		return nil, err
	}

	logger.Info(log, "database connection established",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
		"max_pool_size", cfg.MaxPoolSize,
	)
	return d, nil
}

// Open builds a DB over connect and runs the startup probe. On failure the
// pool is drained before returning.
func Open(ctx context.Context, connect Connector, opts Options, log *slog.Logger) (*DB, error) {
	if log == nil {
		log = logger.Discard()
	}
	log = logger.WithComponent(log, "db")

	pool, err := NewPool(connect, opts.Pool, log)
	if err != nil {
		return nil, err
	}

	d := &DB{pool: pool, opts: opts, log: log}

	if err := d.probe(ctx); err != nil {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.DrainTimeout)
		defer cancel()
		_ = pool.Drain(dctx)
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	m, err := newMetrics(opts.Registerer, pool)
	if err != nil {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.DrainTimeout)
		defer cancel()
		_ = pool.Drain(dctx)
		return nil, err
	}
	d.metrics = m

	return d, nil
}

// PgxConnector returns a Connector that dials dsn with pgx. connectTimeout
// applies when the DSN sets no connect_timeout of its own.
func PgxConnector(dsn string, connectTimeout time.Duration) (Connector, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = connectTimeout
	}

	return func(ctx context.Context) (Conn, error) {
		return pgx.ConnectConfig(ctx, cfg.Copy())
	}, nil
}

// Stats returns a snapshot of the pool accounting.
func (d *DB) Stats() Stats {
	return d.pool.Stats()
}

package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Row maps column names to values for one result row.
type Row map[string]any

// Result is the outcome of one executed statement.
type Result struct {
	Rows         []Row
	RowsAffected int64
}

// Query is a statement and its ordered parameters.
type Query struct {
	SQL  string
	Args []any
}

// querier is the part of a connection or open transaction a statement runs on.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Execute runs one parameterized statement on a pooled connection. The
// connection goes back to the pool on every exit path. Failures are returned
// as *Error.
func (d *DB) Execute(ctx context.Context, sql string, args ...any) (*Result, error) {
	q := Query{SQL: sql, Args: args}
	start := time.Now()

	lease, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, d.observe(q, start, nil, err)
	}
	defer lease.Release()

	res, err := run(ctx, lease.Conn(), q)
	if err != nil && !serverReported(err) {
		lease.Destroy()
	}
	return res, d.observe(q, start, res, err)
}

func run(ctx context.Context, conn querier, q Query) (*Result, error) {
	rows, err := conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}

	collected, err := pgx.CollectRows(rows, toRow)
	if err != nil {
		return nil, err
	}

	return &Result{
		Rows:         collected,
		RowsAffected: rows.CommandTag().RowsAffected(),
	}, nil
}

func toRow(row pgx.CollectableRow) (Row, error) {
	m, err := pgx.RowToMap(row)
	return Row(m), err
}

// observe emits the query record and metrics, and turns err into an *Error.
func (d *DB) observe(q Query, start time.Time, res *Result, err error) error {
	elapsed := time.Since(start)

	if err == nil {
		d.metrics.observeQuery("ok", elapsed)
		d.log.Info("executed query",
			"statement", q.SQL,
			"params", len(q.Args),
			"duration", elapsed,
			"rows", len(res.Rows),
			"outcome", "ok",
		)
		return nil
	}

	dbErr := Classify(err)
	d.metrics.observeQuery(string(dbErr.Kind), elapsed)
	d.log.Info("executed query",
		"statement", q.SQL,
		"params", len(q.Args),
		"duration", elapsed,
		"outcome", string(dbErr.Kind),
	)
	d.log.Error("query failed",
		"statement", q.SQL,
		"params", q.Args,
		"kind", string(dbErr.Kind),
		"error", dbErr.Message,
	)
	return dbErr
}

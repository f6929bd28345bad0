package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// rollbackTimeout bounds a rollback issued after the caller's context is gone.
const rollbackTimeout = 5 * time.Second

// UnitOfWork is a sequence of statements that must commit or roll back as a
// whole. Every statement goes through tx.
type UnitOfWork func(ctx context.Context, tx *Tx) error

type txKey struct{}

// Tx is a handle on an open transaction bound to one leased connection.
// Statements run strictly one after another; it is not possible to begin a
// nested transaction through it.
type Tx struct {
	db         *DB
	tx         pgx.Tx
	mu         sync.Mutex
	finished   bool
	statements int
}

// Execute runs one statement inside the transaction.
func (t *Tx) Execute(ctx context.Context, sql string, args ...any) (*Result, error) {
	q := Query{SQL: sql, Args: args}
	start := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return nil, t.db.observe(q, start, nil,
			&Error{Kind: KindQueryFailed, Message: "transaction already finished"})
	}

	t.statements++
	res, err := run(ctx, t.tx, q)
	return res, t.db.observe(q, start, res, err)
}

func (t *Tx) finish() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished = true
	return t.statements
}

// RunTransaction leases one connection, begins a transaction and hands it to
// fn. A nil return commits; an error or panic rolls back. The error fn
// returned is what the caller gets back, joined with the rollback error when
// the rollback fails too. The connection is released exactly once, after
// the commit or rollback.
//
// Calling RunTransaction from inside a unit of work panics.
func (d *DB) RunTransaction(ctx context.Context, fn UnitOfWork) error {
	if ctx.Value(txKey{}) != nil {
		panic("db: nested transaction")
	}
	start := time.Now()

	lease, err := d.pool.Acquire(ctx)
	if err != nil {
		return d.abort(start, Classify(err))
	}
	defer lease.Release()

	pgtx, err := lease.Conn().Begin(ctx)
	if err != nil {
		if !serverReported(err) {
			lease.Destroy()
		}
		return d.abort(start, Classify(fmt.Errorf("begin: %w", err)))
	}

	tx := &Tx{db: d, tx: pgtx}
	defer func() {
		if p := recover(); p != nil {
			tx.finish()
			if rbErr := rollback(ctx, pgtx); rbErr != nil {
				lease.Destroy()
			}
			d.metrics.observeTransaction("rolled_back")
			d.log.Error("transaction rolled back after panic", "panic", p)
			panic(p)
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx), tx)
	if err == nil {
		err = ctx.Err()
	}
	statements := tx.finish()

	if err != nil {
		if rbErr := rollback(ctx, pgtx); rbErr != nil {
			lease.Destroy()
			err = errors.Join(err, fmt.Errorf("rollback: %w", Classify(rbErr)))
		}
		d.metrics.observeTransaction("rolled_back")
		d.log.Warn("transaction rolled back",
			"statements", statements,
			"duration", time.Since(start),
			"kind", string(KindOf(err)),
			"error", err,
		)
		return err
	}

	if err := pgtx.Commit(ctx); err != nil {
		if !serverReported(err) {
			lease.Destroy()
		}
		return d.abort(start, Classify(fmt.Errorf("commit: %w", err)))
	}

	d.metrics.observeTransaction("committed")
	d.log.Info("transaction committed",
		"statements", statements,
		"duration", time.Since(start),
	)
	return nil
}

// InTransaction is RunTransaction for units of work that produce a value.
func InTransaction[T any](ctx context.Context, d *DB, fn func(ctx context.Context, tx *Tx) (T, error)) (T, error) {
	var out T
	err := d.RunTransaction(ctx, func(ctx context.Context, tx *Tx) error {
		v, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (d *DB) abort(start time.Time, err *Error) error {
	d.metrics.observeTransaction("failed")
	d.log.Error("transaction failed",
		"duration", time.Since(start),
		"kind", string(err.Kind),
		"error", err.Message,
	)
	return err
}

func rollback(ctx context.Context, tx pgx.Tx) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	return tx.Rollback(ctx)
}

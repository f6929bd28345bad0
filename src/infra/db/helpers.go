package db

import "context"

type executor interface {
	Execute(ctx context.Context, sql string, args ...any) (*Result, error)
}

// QueryOne returns the first row of the result. found is false when the
// statement matched nothing.
func (d *DB) QueryOne(ctx context.Context, sql string, args ...any) (row Row, found bool, err error) {
	return queryOne(ctx, d, sql, args...)
}

// QueryMany returns every row of the result, in order. No match yields an
// empty, non-nil slice.
func (d *DB) QueryMany(ctx context.Context, sql string, args ...any) ([]Row, error) {
	return queryMany(ctx, d, sql, args...)
}

// QueryOne is DB.QueryOne inside the transaction.
func (t *Tx) QueryOne(ctx context.Context, sql string, args ...any) (row Row, found bool, err error) {
	return queryOne(ctx, t, sql, args...)
}

// QueryMany is DB.QueryMany inside the transaction.
func (t *Tx) QueryMany(ctx context.Context, sql string, args ...any) ([]Row, error) {
	return queryMany(ctx, t, sql, args...)
}

func queryOne(ctx context.Context, e executor, sql string, args ...any) (Row, bool, error) {
	res, err := e.Execute(ctx, sql, args...)
	if err != nil {
		return nil, false, err
	}
	if len(res.Rows) == 0 {
		return nil, false, nil
	}
	return res.Rows[0], true, nil
}

func queryMany(ctx context.Context, e executor, sql string, args ...any) ([]Row, error) {
	res, err := e.Execute(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if res.Rows == nil {
		return []Row{}, nil
	}
	return res.Rows, nil
}

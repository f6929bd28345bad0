package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestDB_RunTransaction(t *testing.T) {
	t.Run("Should commit when the unit of work succeeds", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		mock := newMock(t)
		d := newMockDB(t, mock, func(o *Options) { o.Registerer = reg })

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE products SET price").
			WithArgs(10, 1).
			WillReturnRows(pgxmock.NewRows([]string{}).AddCommandTag(pgxmock.NewResult("UPDATE", 1)))
		mock.ExpectQuery("INSERT INTO price_history").
			WithArgs(1, 10).
			WillReturnRows(pgxmock.NewRows([]string{}).AddCommandTag(pgxmock.NewResult("INSERT", 1)))
		mock.ExpectCommit()

		err := d.RunTransaction(context.Background(), func(ctx context.Context, tx *Tx) error {
			if _, err := tx.Execute(ctx, "UPDATE products SET price = $1 WHERE id = $2", 10, 1); err != nil {
				return err
			}
			_, err := tx.Execute(ctx, "INSERT INTO price_history (product_id, price) VALUES ($1, $2)", 1, 10)
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, int32(0), d.Stats().Leased)
		assert.Equal(t, int32(1), d.Stats().Idle)
		assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.transactions.WithLabelValues("committed")))
	})

	t.Run("Should roll back and return the failing statement's error", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO products").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int32(5)))
		mock.ExpectQuery("INSERT INTO reviews").
			WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint", ConstraintName: "reviews_product_id_fkey"})
		mock.ExpectRollback()

		err := d.RunTransaction(context.Background(), func(ctx context.Context, tx *Tx) error {
			if _, err := tx.Execute(ctx, "INSERT INTO products (name) VALUES ('x') RETURNING id"); err != nil {
				return err
			}
			_, err := tx.Execute(ctx, "INSERT INTO reviews (product_id) VALUES (999)")
			return err
		})

		require.ErrorIs(t, err, ErrMissingReference)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, int32(1), d.Stats().Idle)
	})

	t.Run("Should return the unit of work's error unchanged", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := d.RunTransaction(context.Background(), func(context.Context, *Tx) error {
			return errBoom
		})

		assert.Equal(t, errBoom, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should report a failed rollback alongside the original error", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

		err := d.RunTransaction(context.Background(), func(context.Context, *Tx) error {
			return errBoom
		})

		require.ErrorIs(t, err, errBoom)
		assert.ErrorIs(t, err, ErrQueryFailed)
		assert.Contains(t, err.Error(), "rollback")
		assert.Contains(t, err.Error(), "connection lost")
		waitForTotal(t, d.Stats, 0)
	})

	t.Run("Should roll back and release when the unit of work panics", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "kaboom", func() {
			_ = d.RunTransaction(context.Background(), func(context.Context, *Tx) error {
				panic("kaboom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, int32(0), d.Stats().Leased)
	})

	t.Run("Should roll back when the context is cancelled during the unit of work", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectRollback()

		ctx, cancel := context.WithCancel(context.Background())
		err := d.RunTransaction(ctx, func(context.Context, *Tx) error {
			cancel()
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, int32(0), d.Stats().Leased)
	})

	t.Run("Should refuse to nest transactions", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "db: nested transaction", func() {
			_ = d.RunTransaction(context.Background(), func(ctx context.Context, _ *Tx) error {
				return d.RunTransaction(ctx, func(context.Context, *Tx) error { return nil })
			})
		})
		assert.Equal(t, int32(0), d.Stats().Leased)
	})

	t.Run("Should classify commit failures", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})

		err := d.RunTransaction(context.Background(), func(context.Context, *Tx) error { return nil })

		var dbErr *Error
		require.ErrorAs(t, err, &dbErr)
		assert.Equal(t, KindQueryFailed, dbErr.Kind)
		assert.Equal(t, "40001", dbErr.Code)
		assert.Equal(t, int32(1), d.Stats().Idle)
	})

	t.Run("Should classify begin failures and drop the connection", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin().WillReturnError(errors.New("broken pipe"))

		err := d.RunTransaction(context.Background(), func(context.Context, *Tx) error {
			t.Fatal("unit of work must not run")
			return nil
		})

		assert.ErrorIs(t, err, ErrQueryFailed)
		waitForTotal(t, d.Stats, 0)
	})

	t.Run("Should reject statements after the transaction finished", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectCommit()

		var escaped *Tx
		require.NoError(t, d.RunTransaction(context.Background(), func(_ context.Context, tx *Tx) error {
			escaped = tx
			return nil
		}))

		_, err := escaped.Execute(context.Background(), "SELECT 1")

		require.ErrorIs(t, err, ErrQueryFailed)
		assert.Contains(t, err.Error(), "transaction already finished")
	})
}

func TestInTransaction(t *testing.T) {
	t.Run("Should return the unit of work's value after commit", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO products").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int32(42)))
		mock.ExpectCommit()

		id, err := InTransaction(context.Background(), d, func(ctx context.Context, tx *Tx) (int32, error) {
			row, _, err := tx.QueryOne(ctx, "INSERT INTO products (name) VALUES ('x') RETURNING id")
			if err != nil {
				return 0, err
			}
			return row["id"].(int32), nil
		})

		require.NoError(t, err)
		assert.Equal(t, int32(42), id)
	})

	t.Run("Should return the zero value on rollback", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectRollback()

		got, err := InTransaction(context.Background(), d, func(context.Context, *Tx) (string, error) {
			return "partial", errBoom
		})

		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, got)
	})
}

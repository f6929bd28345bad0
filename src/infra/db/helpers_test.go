package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_QueryOne(t *testing.T) {
	t.Run("Should report no row without failing", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectQuery("SELECT").
			WithArgs(404).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))

		row, found, err := d.QueryOne(context.Background(), "SELECT id, name FROM products WHERE id = $1", 404)

		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, row)
	})

	t.Run("Should return the first row", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectQuery("SELECT").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int32(3)).AddRow(int32(2)))

		row, found, err := d.QueryOne(context.Background(), "SELECT id FROM products ORDER BY id DESC")

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, Row{"id": int32(3)}, row)
	})

	t.Run("Should pass classified errors through", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectQuery("SELECT").WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "products" does not exist`})

		_, found, err := d.QueryOne(context.Background(), "SELECT * FROM products")

		assert.False(t, found)
		assert.ErrorIs(t, err, ErrUndefinedTable)
	})
}

func TestDB_QueryMany(t *testing.T) {
	t.Run("Should return an empty slice when nothing matches", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectQuery("SELECT").WillReturnRows(pgxmock.NewRows([]string{"id"}))

		rows, err := d.QueryMany(context.Background(), "SELECT id FROM products")

		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("Should keep row order", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectQuery("SELECT").
			WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("c").AddRow("a").AddRow("b"))

		rows, err := d.QueryMany(context.Background(), "SELECT name FROM products ORDER BY created_at DESC")

		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []any{"c", "a", "b"}, []any{rows[0]["name"], rows[1]["name"], rows[2]["name"]})
	})
}

func TestTx_Helpers(t *testing.T) {
	t.Run("Should run helpers on the transaction's connection", func(t *testing.T) {
		mock := newMock(t)
		d := newMockDB(t, mock)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .* FOR UPDATE").
			WithArgs(1).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))
		mock.ExpectQuery("SELECT id FROM products").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int32(1)))
		mock.ExpectCommit()

		err := d.RunTransaction(context.Background(), func(ctx context.Context, tx *Tx) error {
			_, found, err := tx.QueryOne(ctx, "SELECT * FROM products WHERE id = $1 FOR UPDATE", 1)
			require.NoError(t, err)
			assert.False(t, found)

			rows, err := tx.QueryMany(ctx, "SELECT id FROM products")
			require.NoError(t, err)
			assert.Len(t, rows, 1)
			return nil
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

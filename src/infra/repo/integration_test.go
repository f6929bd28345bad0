package repo

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"catalog/src/core/domain"
	"catalog/src/infra/db"
)

func newPostgresDB(ctx context.Context, t *testing.T) *db.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	log := slog.New(slog.DiscardHandler)
	require.NoError(t, db.Migrate(ctx, dsn, log))

	connect, err := db.PgxConnector(dsn, 5*time.Second)
	require.NoError(t, err)
	d, err := db.Open(ctx, connect, db.Options{
		Pool:          db.PoolConfig{MaxSize: 4, AcquireTimeout: 2 * time.Second},
		HealthTimeout: 5 * time.Second,
		DrainTimeout:  5 * time.Second,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Shutdown(context.Background()) })
	return d
}

func TestProductRepository_Postgres(t *testing.T) {
	ctx := context.Background()
	d := newPostgresDB(ctx, t)
	repo := NewProductRepository(d, slog.New(slog.DiscardHandler))

	lamp, err := repo.Create(ctx, domain.ProductInput{Name: "Lamp", Price: 19.99, Image: "lamp.png"})
	require.NoError(t, err)
	assert.Equal(t, 19.99, lamp.Price)
	assert.False(t, lamp.CreatedAt.IsZero())

	chair, err := repo.Create(ctx, domain.ProductInput{Name: "Chair", Price: 45.5, Image: "chair.png"})
	require.NoError(t, err)

	t.Run("Should list newest first", func(t *testing.T) {
		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, chair.ID, got[0].ID)
	})

	t.Run("Should merge a partial update", func(t *testing.T) {
		price := 21.0
		got, err := repo.Update(ctx, lamp.ID, domain.ProductPatch{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "Lamp", got.Name)
		assert.Equal(t, 21.0, got.Price)
	})

	t.Run("Should leave nothing behind when updating a missing product", func(t *testing.T) {
		price := 1.0
		_, err := repo.Update(ctx, 999999, domain.ProductPatch{Price: &price})
		assert.True(t, domain.IsNotFound(err))
		assert.Equal(t, int32(0), d.Stats().Leased)
	})

	t.Run("Should delete and then report not found", func(t *testing.T) {
		got, err := repo.Delete(ctx, chair.ID)
		require.NoError(t, err)
		assert.Equal(t, "Chair", got.Name)

		_, err = repo.Get(ctx, chair.ID)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("Should read the database clock", func(t *testing.T) {
		now, err := NewStatusRepository(d).Now(ctx)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), now, time.Minute)
	})
}

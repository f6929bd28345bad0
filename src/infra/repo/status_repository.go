package repo

import (
	"context"
	"fmt"
	"time"

	"catalog/src/core/ports"
	"catalog/src/infra/db"
)

var _ ports.DatabaseProbe = (*StatusRepository)(nil)

// StatusRepository answers health questions about the database.
type StatusRepository struct {
	db *db.DB
}

// NewStatusRepository constructs a StatusRepository.
func NewStatusRepository(d *db.DB) *StatusRepository {
	return &StatusRepository{db: d}
}

func (r *StatusRepository) Health(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func (r *StatusRepository) Now(ctx context.Context) (time.Time, error) {
	row, _, err := r.db.QueryOne(ctx, `SELECT NOW() AS current_time`)
	if err != nil {
		return time.Time{}, translate("read database time", err)
	}
	now, ok := row["current_time"].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("read database time: unexpected %T", row["current_time"])
	}
	return now, nil
}

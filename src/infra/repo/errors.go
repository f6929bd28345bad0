package repo

import (
	"errors"
	"fmt"

	"catalog/src/core/domain"
	"catalog/src/infra/db"
)

// translate maps database failures onto domain errors. Domain errors raised
// inside a transaction pass through unchanged.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	switch db.KindOf(err) {
	case db.KindDuplicateEntry:
		return domain.NewConflictError("product already exists")
	case db.KindMissingReference:
		return domain.NewUnprocessableError("referenced record does not exist")
	case db.KindPoolExhausted:
		return domain.NewUnavailableError("database is busy, try again")
	case db.KindPoolClosed:
		return domain.NewUnavailableError("database is shutting down")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/repo. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"
	"time"

	"catalog/src/core/domain"
)

// Repository is the base interface for all repositories.
// Concrete repositories should embed this and add entity-specific methods.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// ProductRepository persists products.
type ProductRepository interface {
	Repository

	// List returns every product, newest first.
	List(ctx context.Context) ([]domain.Product, error)

	// Get returns the product with id or a not-found error.
	Get(ctx context.Context, id int64) (*domain.Product, error)

	// Create stores a validated product and returns it with its id.
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)

	// Update loads the product, applies patch and stores it in one
	// transaction. A missing product is a not-found error and nothing changes.
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)

	// Delete removes the product and returns the removed row.
	Delete(ctx context.Context, id int64) (*domain.Product, error)
}

// DatabaseProbe reports on the database itself.
type DatabaseProbe interface {
	Repository

	// Now returns the database server's clock.
	Now(ctx context.Context) (time.Time, error)
}

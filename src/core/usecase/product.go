package usecase

import (
	"context"
	"log/slog"

	"catalog/src/core/domain"
	"catalog/src/core/ports"
)

// ProductService handles catalog operations.
type ProductService struct {
	repo ports.ProductRepository
	log  *slog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo ports.ProductRepository, log *slog.Logger) *ProductService {
	return &ProductService{repo: repo, log: log}
}

// List returns all products, newest first.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.NewNotFoundError("product")
	}
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new product.
func (s *ProductService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.log.Info("product created", "product_id", product.ID)
	return product, nil
}

// Update applies a partial update. An empty patch returns the stored product.
func (s *ProductService) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.NewNotFoundError("product")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.repo.Get(ctx, id)
	}

	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info("product updated", "product_id", product.ID)
	return product, nil
}

// Delete removes a product and returns it.
func (s *ProductService) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.NewNotFoundError("product")
	}

	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info("product deleted", "product_id", product.ID)
	return product, nil
}

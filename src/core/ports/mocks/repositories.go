// Package mocks provides testify mocks for the ports interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"catalog/src/core/domain"
	"catalog/src/core/ports"
)

var (
	_ ports.ProductRepository = (*ProductRepository)(nil)
	_ ports.DatabaseProbe     = (*DatabaseProbe)(nil)
)

// ProductRepository is a mock ports.ProductRepository.
type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *ProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	return product(args.Get(0)), args.Error(1)
}

func (m *ProductRepository) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, in)
	return product(args.Get(0)), args.Error(1)
}

func (m *ProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	args := m.Called(ctx, id, patch)
	return product(args.Get(0)), args.Error(1)
}

func (m *ProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	return product(args.Get(0)), args.Error(1)
}

// DatabaseProbe is a mock ports.DatabaseProbe.
type DatabaseProbe struct {
	mock.Mock
}

func (m *DatabaseProbe) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *DatabaseProbe) Now(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	now, _ := args.Get(0).(time.Time)
	return now, args.Error(1)
}

func product(v any) *domain.Product {
	p, _ := v.(*domain.Product)
	return p
}

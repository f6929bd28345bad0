package repo

import (
	"context"
	"log/slog"
	"time"

	"catalog/src/core/domain"
	"catalog/src/core/ports"
	"catalog/src/infra/db"
)

var _ ports.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements ports.ProductRepository over the pooled
// executor.
type ProductRepository struct {
	db  *db.DB
	log *slog.Logger
}

// NewProductRepository constructs a repository backed by Postgres.
func NewProductRepository(d *db.DB, log *slog.Logger) *ProductRepository {
	return &ProductRepository{db: d, log: log}
}

// productRecord is a products row as the executor returns it.
type productRecord struct {
	ID        int64     `mapstructure:"id"`
	Name      string    `mapstructure:"name"`
	Price     float64   `mapstructure:"price"`
	Image     string    `mapstructure:"image"`
	CreatedAt time.Time `mapstructure:"created_at"`
}

func (r productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:        r.ID,
		Name:      r.Name,
		Price:     r.Price,
		Image:     r.Image,
		CreatedAt: r.CreatedAt,
	}
}

func decodeProduct(row db.Row) (*domain.Product, error) {
	var rec productRecord
	if err := decodeRow(row, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (r *ProductRepository) Health(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
		SELECT id, name, price, image, created_at
		FROM products
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryMany(ctx, q)
	if err != nil {
		return nil, translate("list products", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := decodeProduct(row)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	const q = `
		SELECT id, name, price, image, created_at
		FROM products
		WHERE id = $1
	`
	row, found, err := r.db.QueryOne(ctx, q, id)
	if err != nil {
		return nil, translate("get product", err)
	}
	if !found {
		return nil, domain.NewNotFoundError("product")
	}
	return decodeProduct(row)
}

func (r *ProductRepository) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	const q = `
		INSERT INTO products (name, price, image)
		VALUES ($1, $2, $3)
		RETURNING id, name, price, image, created_at
	`
	row, _, err := r.db.QueryOne(ctx, q, in.Name, in.Price, in.Image)
	if err != nil {
		return nil, translate("create product", err)
	}
	return decodeProduct(row)
}

// Update locks the row, merges the patch and writes it back in one
// transaction. A missing row rolls back with a not-found error.
func (r *ProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	const selectQ = `
		SELECT id, name, price, image, created_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`
	const updateQ = `
		UPDATE products
		SET name = $1, price = $2, image = $3
		WHERE id = $4
		RETURNING id, name, price, image, created_at
	`
	product, err := db.InTransaction(ctx, r.db, func(ctx context.Context, tx *db.Tx) (*domain.Product, error) {
		row, found, err := tx.QueryOne(ctx, selectQ, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, domain.NewNotFoundError("product")
		}
		current, err := decodeProduct(row)
		if err != nil {
			return nil, err
		}

		next := patch.Apply(*current)
		if err := (domain.ProductInput{Name: next.Name, Price: next.Price, Image: next.Image}).Validate(); err != nil {
			return nil, err
		}

		row, _, err = tx.QueryOne(ctx, updateQ, next.Name, next.Price, next.Image, id)
		if err != nil {
			return nil, err
		}
		return decodeProduct(row)
	})
	if err != nil {
		return nil, translate("update product", err)
	}
	return product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	const q = `
		DELETE FROM products
		WHERE id = $1
		RETURNING id, name, price, image, created_at
	`
	row, found, err := r.db.QueryOne(ctx, q, id)
	if err != nil {
		return nil, translate("delete product", err)
	}
	if !found {
		return nil, domain.NewNotFoundError("product")
	}
	return decodeProduct(row)
}

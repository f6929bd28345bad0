package dto

import (
	"time"

	"catalog/src/core/domain"
)

// CreateProductRequest is the payload for POST /api/products.
type CreateProductRequest struct {
	Name  string  `json:"name" binding:"required,max=255"`
	Price float64 `json:"price" binding:"required,gt=0"`
	Image string  `json:"image" binding:"required,max=255"`
}

// ToInput converts the request to a domain input.
func (r *CreateProductRequest) ToInput() domain.ProductInput {
	return domain.ProductInput{
		Name:  r.Name,
		Price: r.Price,
		Image: r.Image,
	}
}

// UpdateProductRequest is the payload for PUT /api/products/:id.
// Omitted or empty fields keep the stored value.
type UpdateProductRequest struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
	Image *string  `json:"image"`
}

// ToPatch converts the request to a domain patch, dropping empty values.
func (r *UpdateProductRequest) ToPatch() domain.ProductPatch {
	var patch domain.ProductPatch
	if r.Name != nil && *r.Name != "" {
		patch.Name = r.Name
	}
	if r.Price != nil && *r.Price != 0 {
		patch.Price = r.Price
	}
	if r.Image != nil && *r.Image != "" {
		patch.Image = r.Image
	}
	return patch
}

// ProductResponse is a product as the API returns it.
type ProductResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductFromDomain converts a domain product.
func ProductFromDomain(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
	}
}

// ProductsFromDomain converts a list, never returning nil.
func ProductsFromDomain(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ProductFromDomain(&products[i]))
	}
	return out
}

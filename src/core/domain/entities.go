package domain

import (
	"strings"
	"time"
)

const (
	// MaxTextLength is the column width of product name and image.
	MaxTextLength = 255

	// MaxPrice is the largest value a NUMERIC(10,2) price holds.
	MaxPrice = 99999999.99
)

// Product is an item in the catalog.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductInput holds the fields required to create a product.
type ProductInput struct {
	Name  string
	Price float64
	Image string
}

// Normalize trims surrounding whitespace from text fields.
func (in ProductInput) Normalize() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	return in
}

// Validate checks the input against the catalog rules.
func (in ProductInput) Validate() error {
	if err := validateText("name", in.Name); err != nil {
		return err
	}
	if err := validatePrice(in.Price); err != nil {
		return err
	}
	return validateText("image", in.Image)
}

// ProductPatch is a partial update. Nil fields keep the stored value.
type ProductPatch struct {
	Name  *string
	Price *float64
	Image *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Image == nil
}

// Apply returns current with the patch's fields merged in.
func (p ProductPatch) Apply(current Product) Product {
	if p.Name != nil {
		current.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		current.Price = *p.Price
	}
	if p.Image != nil {
		current.Image = strings.TrimSpace(*p.Image)
	}
	return current
}

// Validate checks the fields the patch sets.
func (p ProductPatch) Validate() error {
	if p.Name != nil {
		if err := validateText("name", strings.TrimSpace(*p.Name)); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Image != nil {
		return validateText("image", strings.TrimSpace(*p.Image))
	}
	return nil
}

func validateText(field, value string) error {
	if value == "" {
		return NewValidationError(field, "is required")
	}
	if len(value) > MaxTextLength {
		return NewValidationError(field, "must be at most 255 characters")
	}
	return nil
}

func validatePrice(price float64) error {
	if price <= 0 {
		return NewValidationError("price", "must be greater than zero")
	}
	if price > MaxPrice {
		return NewValidationError("price", "is too large")
	}
	return nil
}

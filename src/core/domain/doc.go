// Package domain contains the core domain model for the catalog.
//
// This package defines:
//   - Entities: Product and the inputs that create or change it
//   - Domain Errors: Business rule violation errors
//
// Rules for this package:
//   - No external dependencies except the standard library
//   - No infrastructure concerns (database, HTTP, etc.)
//   - Entities validate their own invariants
//
// Example:
//
//	in := domain.ProductInput{Name: "Desk Lamp", Price: 19.99, Image: "https://..."}.Normalize()
//	if err := in.Validate(); err != nil {
//	    return nil, err // *DomainError wrapping ErrInvalidInput
//	}
package domain

// Package product manages the catalog of food products tracked by the platform.
//
// A product's category (dairy, meat, seafood, ...) selects the pH safe band the
// risk engine applies to inspections of its batches.
package product

import (
	"context"
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product: not found")
)

// Product is a food product whose production runs are tracked as batches.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateRequest is the input for registering a product.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// UpdateRequest carries the mutable product fields. Nil pointers mean
// "leave unchanged".
type UpdateRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

// Store persists product data.
type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

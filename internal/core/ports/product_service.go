package ports

import (
	"context"

	"github.com/clothify/storefront/internal/core/domain"
)

// CreateProductInput carries the fields required to create a product.
type CreateProductInput struct {
	Name        string   `json:"name"        validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Image       string   `json:"image"       validate:"omitempty,max=2048"`
	Category    string   `json:"category"    validate:"omitempty,max=50"`
	Stock       int      `json:"stock"       validate:"gte=0"`
}

// UpdateProductInput is a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name        *string  `json:"name"        validate:"omitnil,min=1,max=100"`
	Description *string  `json:"description" validate:"omitnil,min=1"`
	Price       *float64 `json:"price"       validate:"omitnil,gte=0"`
	Image       *string  `json:"image"       validate:"omitnil,max=2048"`
	Category    *string  `json:"category"    validate:"omitnil,max=50"`
	Stock       *int     `json:"stock"       validate:"omitnil,gte=0"`
}

// ProductService defines use-case operations for the catalog.
type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

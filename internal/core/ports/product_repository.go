package ports

import (
	"context"

	"github.com/clothify/storefront/internal/core/domain"
)

// ProductRepository defines persistence operations for catalog products.
// Implementations return domain.ErrInvalidID for ids they cannot parse and
// domain.ErrProductNotFound when no document matches.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// List returns every product, newest first.
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

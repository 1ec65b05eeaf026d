package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clothify/storefront/internal/core/domain"
	"github.com/clothify/storefront/internal/core/ports"
	"github.com/clothify/storefront/internal/core/validate"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger, now: time.Now}
}

// Create validates and stores a new product. Stock defaults to zero.
func (s *ProductService) Create(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		ImageURL:    strings.TrimSpace(in.Image),
		Category:    strings.TrimSpace(in.Category),
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, internal("create product", err)
	}

	s.logger.Info().Str("product_id", created.ID).Msg("product created")
	return created, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, passThrough("get product", err)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal("list products", err)
	}
	if items == nil {
		items = []*domain.Product{}
	}
	return items, nil
}

// Update applies a partial update. An empty patch returns the product as is.
func (s *ProductService) Update(ctx context.Context, id string, in ports.UpdateProductInput) (*domain.Product, error) {
	in.Name = trimmed(in.Name)
	in.Description = trimmed(in.Description)
	in.Image = trimmed(in.Image)
	in.Category = trimmed(in.Category)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	patch := domain.ProductPatch{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.Image,
		Category:    in.Category,
		Stock:       in.Stock,
	}
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, passThrough("update product", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return passThrough("delete product", err)
	}
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// passThrough keeps the product lookup errors callers map to 400/404 and
// wraps everything else as internal.
func passThrough(op string, err error) error {
	if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrInvalidID) {
		return err
	}
	return internal(op, err)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothify/storefront/internal/core/domain"
	"github.com/clothify/storefront/internal/core/ports"
)

type stubProductRepo struct {
	items     map[string]*domain.Product
	seq       int
	createErr error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{items: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *p
	clone.ID = string(rune('0' + r.seq))
	r.items[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	if id == "bad" {
		return nil, domain.ErrInvalidID
	}
	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.items {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.items, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func validProductInput() ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:        "Linen shirt",
		Description: "Relaxed fit, natural linen",
		Price:       ptr(39.9),
		Image:       "/images/linen.jpg",
	}
}

func TestProductService_Create(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())

	p, err := svc.Create(context.Background(), validProductInput())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Linen shirt", p.Name)
	assert.Equal(t, 39.9, p.Price)
	assert.Equal(t, 0, p.Stock)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestProductService_Create_Validation(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, zerolog.Nop())

	in := validProductInput()
	in.Name = "   "
	in.Price = ptr(-1.0)

	_, err := svc.Create(context.Background(), in)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasField("name"))
	assert.True(t, ve.HasField("price"))
	assert.Empty(t, repo.items)

	in = validProductInput()
	in.Price = nil
	_, err = svc.Create(context.Background(), in)
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasField("price"))
}

func TestProductService_Create_StoreFailure(t *testing.T) {
	repo := newStubProductRepo()
	repo.createErr = errors.New("write concern timeout")
	svc := NewProductService(repo, zerolog.Nop())

	_, err := svc.Create(context.Background(), validProductInput())
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestProductService_GetAndList(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())

	empty, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)

	a, err := svc.Create(context.Background(), validProductInput())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Name, got.Name)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProductService_Update_Partial(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())
	p, err := svc.Create(context.Background(), validProductInput())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), p.ID, ports.UpdateProductInput{Price: ptr(29.5), Stock: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 29.5, updated.Price)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, p.Name, updated.Name)

	unchanged, err := svc.Update(context.Background(), p.ID, ports.UpdateProductInput{})
	require.NoError(t, err)
	assert.Equal(t, 29.5, unchanged.Price)

	_, err = svc.Update(context.Background(), p.ID, ports.UpdateProductInput{Name: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Update(context.Background(), "missing", ports.UpdateProductInput{Stock: ptr(1)})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductService_Delete(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), zerolog.Nop())
	p, err := svc.Create(context.Background(), validProductInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), p.ID), domain.ErrProductNotFound)
}

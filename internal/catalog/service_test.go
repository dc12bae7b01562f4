package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tienda-shop/tienda-shop/internal/shared"
)

// fakeRepo embeds the interface so only the methods a test exercises need
// implementations.
type fakeRepo struct {
	Repository
	categories map[int64]Category
	attrs      map[int64]VariantAttribute
	nextID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{categories: map[int64]Category{}, attrs: map[int64]VariantAttribute{}}
}

func (r *fakeRepo) CreateCategory(_ context.Context, name string) (Category, error) {
	r.nextID++
	c := Category{ID: r.nextID, Name: name}
	r.categories[c.ID] = c
	return c, nil
}

func (r *fakeRepo) CreateAttribute(_ context.Context, attr VariantAttribute) (VariantAttribute, error) {
	r.nextID++
	attr.ID = r.nextID
	r.attrs[attr.ID] = attr
	return attr, nil
}

func TestCreateCategoryValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateCategory(context.Background(), "   ")
	require.ErrorIs(t, err, shared.ErrValidation)

	c, err := svc.CreateCategory(context.Background(), "Collares")
	require.NoError(t, err)
	require.Equal(t, "Collares", c.Name)
	require.NotZero(t, c.ID)
}

func TestCreateAttributeValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateAttribute(context.Background(), VariantAttribute{Name: "Color", Values: " , "})
	require.ErrorIs(t, err, shared.ErrValidation)

	attr, err := svc.CreateAttribute(context.Background(), VariantAttribute{Name: "Color", Values: "Rojo, Azul,Verde"})
	require.NoError(t, err)
	require.Equal(t, []string{"Rojo", "Azul", "Verde"}, attr.ValuesList())
}

func TestAttributeHasValue(t *testing.T) {
	attr := VariantAttribute{Name: "Talle", Values: "S, M , L"}
	require.True(t, attr.HasValue("M"))
	require.False(t, attr.HasValue("XL"))
	require.False(t, attr.HasValue(""))
}

func TestGetCategoryInvalidID(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.GetCategory(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrValidation)
}

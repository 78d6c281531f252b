package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/etailor/internal/apperrors"
	"github.com/example/etailor/internal/models"
)

func fabric(name string, multiplier float64, active bool) models.Fabric {
	f := models.Fabric{Name: name, PriceMultiplier: decimal.NewFromFloat(multiplier), IsActive: active}
	f.ID = uuid.New()
	return f
}

func product(name string, active bool, fabrics ...models.Fabric) models.Product {
	p := models.Product{Name: name, BasePrice: 1000, IsActive: active, Fabrics: fabrics}
	p.ID = uuid.New()
	return p
}

type staticSource struct {
	products []models.Product
	err      error
}

func (s *staticSource) ListProducts(context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func TestListProductsActiveSortedByName(t *testing.T) {
	store := New([]models.Product{
		product("Suit", true),
		product("Blazer", true),
		product("Retired Coat", false),
		product("Dress", true),
	})

	var names []string
	for _, p := range store.ListProducts() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Blazer", "Dress", "Suit"}, names)
}

func TestGetProduct(t *testing.T) {
	active := product("Shirt", true)
	retired := product("Cape", false)
	store := New([]models.Product{active, retired})

	got, err := store.GetProduct(active.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", got.Name)
	assert.Nil(t, got.Fabrics)

	_, err = store.GetProduct(retired.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = store.GetProduct(uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListFabricsForSkipsInactive(t *testing.T) {
	silk := fabric("Silk", 1.8, true)
	satin := fabric("Satin", 1.4, true)
	velvet := fabric("Velvet", 2.2, false)
	dress := product("Dress", true, silk, velvet, satin)
	store := New([]models.Product{dress})

	fabrics, err := store.ListFabricsFor(dress.ID)
	require.NoError(t, err)
	require.Len(t, fabrics, 2)
	assert.Equal(t, "Satin", fabrics[0].Name)
	assert.Equal(t, "Silk", fabrics[1].Name)

	_, err = store.GetFabric(velvet.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReloadSwapsView(t *testing.T) {
	src := &staticSource{products: []models.Product{product("Shirt", true)}}
	store, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, store.ListProducts(), 1)

	src.products = append(src.products, product("Pants", true))
	require.NoError(t, store.Reload(context.Background()))
	assert.Len(t, store.ListProducts(), 2)

	src.err = errors.New("down")
	assert.Error(t, store.Reload(context.Background()))
	assert.Len(t, store.ListProducts(), 2, "failed reload keeps the previous view")
}

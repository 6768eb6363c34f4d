package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/testutil/memstore"
)

func TestReplenishment_SoloBajoMinimoOrdenadoPorDeficit(t *testing.T) {
	store := memstore.New()
	store.AddProduct("Cable", "C-1", 8, 10, 50)   // déficit 20%
	store.AddProduct("Batería", "B-1", 0, 4, 20)  // déficit 100%
	store.AddProduct("Adaptador", "A-1", 30, 10, 50)
	store.AddProduct("Disco", "D-1", 5, 10, 40)   // déficit 50%

	list, err := inventory.NewReplenishmentUseCase(store).GenerateReplenishmentList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, []string{"B-1", "D-1", "C-1"}, []string{list[0].SKU, list[1].SKU, list[2].SKU})
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, int64(20), list[0].SuggestedOrderQty)
	assert.Equal(t, int64(5), list[1].Deficit)
	assert.Equal(t, int64(35), list[1].SuggestedOrderQty)
}

func TestReplenishment_SinFaltantesDevuelveListaVacia(t *testing.T) {
	store := memstore.New()
	store.AddProduct("Cable", "C-1", 10, 10, 50)

	list, err := inventory.NewReplenishmentUseCase(store).GenerateReplenishmentList(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

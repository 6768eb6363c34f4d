package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/application/usecase"
	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

// memoryCache caché en memoria con generación, igual que la de Redis.
type memoryCache struct {
	mu         sync.Mutex
	levels     []entity.StockLevel
	ok         bool
	generation int64
	getErr     error
	sets       int
	skipped    int
}

func (c *memoryCache) GetLevels(context.Context) ([]entity.StockLevel, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.levels, c.generation, c.ok, c.getErr
}

func (c *memoryCache) SetLevels(_ context.Context, generation int64, levels []entity.StockLevel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		c.skipped++
		return nil
	}
	c.levels, c.ok = levels, true
	c.sets++
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels, c.ok = nil, false
	c.generation++
	return nil
}

// commitDuringRead simula un commit del motor entre la lectura del repositorio y el llenado de la caché.
type commitDuringRead struct {
	repository.InventoryLevelRepository
	onList func()
}

func (r commitDuringRead) ListLevels(ctx context.Context) ([]entity.StockLevel, error) {
	levels, err := r.InventoryLevelRepository.ListLevels(ctx)
	if r.onList != nil {
		r.onList()
	}
	return levels, err
}

func TestListCurrentStock_OrdenadoPorNombreConEstado(t *testing.T) {
	f := newEngine(t)
	f.store.AddProduct("Zeta", "Z-1", 3, 5, 100)
	f.store.AddProduct("Alfa", "A-1", 200, 0, 100)
	f.store.AddProduct("Medio", "M-1", 50, 5, 100)

	q := inventory.NewInventoryQueryUseCase(f.store, f.store, nil, zerolog.Nop())
	levels, err := q.ListCurrentStock(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"Alfa", "Medio", "Zeta"}, []string{levels[0].Name, levels[1].Name, levels[2].Name})
	assert.Equal(t, "OVER", levels[0].Status)
	assert.Equal(t, "OK", levels[1].Status)
	assert.Equal(t, "LOW", levels[2].Status)
}

func TestLevels_UsaCacheYLaLlenaEnMiss(t *testing.T) {
	f := newEngine(t)
	f.store.AddProduct("Widget", "W-1", 7, 0, 100)
	cache := &memoryCache{}
	q := inventory.NewInventoryQueryUseCase(f.store, f.store, cache, zerolog.Nop())
	ctx := context.Background()

	levels, err := q.Levels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, 1, cache.sets)

	// Un cambio directo no se ve mientras la caché siga vigente.
	f.store.SetStock(levels[0].ProductID, 99)
	levels, err = q.Levels(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), levels[0].CurrentStock)
	assert.Equal(t, 1, cache.sets)

	require.NoError(t, cache.Invalidate(ctx))
	levels, err = q.Levels(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(99), levels[0].CurrentStock)
}

func TestLevels_ErrorDeCacheCaeAlRepositorio(t *testing.T) {
	f := newEngine(t)
	f.store.AddProduct("Widget", "W-1", 7, 0, 100)
	cache := &memoryCache{getErr: errors.New("redis no disponible")}
	q := inventory.NewInventoryQueryUseCase(f.store, f.store, cache, zerolog.Nop())

	levels, err := q.Levels(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, int64(7), levels[0].CurrentStock)
}

func TestListCurrentStock_CambiosDelRegistroInvalidanCache(t *testing.T) {
	f := newEngine(t)
	cache := &memoryCache{}
	products := usecase.NewProductUseCase(f.store, cache, zerolog.Nop())
	q := inventory.NewInventoryQueryUseCase(f.store, f.store, cache, zerolog.Nop())
	ctx := context.Background()

	widget, err := products.Create(ctx, dto.CreateProductRequest{Name: "Widget", SKU: "W-1"})
	require.NoError(t, err)
	levels, err := q.ListCurrentStock(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	require.True(t, cache.ok)

	gadget, err := products.Create(ctx, dto.CreateProductRequest{Name: "Gadget", SKU: "G-1"})
	require.NoError(t, err)
	minStock := int64(50)
	_, err = products.Update(ctx, widget.ID, dto.UpdateProductRequest{MinStock: &minStock})
	require.NoError(t, err)

	levels, err = q.ListCurrentStock(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "Widget", levels[1].Name)
	assert.Equal(t, int64(50), levels[1].MinStock)
	assert.Equal(t, "LOW", levels[1].Status)

	require.NoError(t, products.Delete(ctx, gadget.ID))
	levels, err = q.ListCurrentStock(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "Widget", levels[0].Name)
}

func TestLevels_NoReponeCacheConDatosPreviosAUnCommit(t *testing.T) {
	f := newEngine(t)
	p := f.store.AddProduct("Widget", "W-1", 0, 0, 100)
	cache := &memoryCache{}
	ctx := context.Background()

	// El motor confirma e invalida mientras la consulta ya leyó los contadores viejos.
	repo := commitDuringRead{InventoryLevelRepository: f.store, onList: func() {
		f.store.SetStock(p, 20)
		require.NoError(t, cache.Invalidate(ctx))
	}}
	q := inventory.NewInventoryQueryUseCase(repo, f.store, cache, zerolog.Nop())

	levels, err := q.Levels(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), levels[0].CurrentStock)
	assert.False(t, cache.ok, "la lectura vieja no debe quedar en caché")
	assert.Equal(t, 1, cache.skipped)

	repo.onList = nil
	q = inventory.NewInventoryQueryUseCase(repo, f.store, cache, zerolog.Nop())
	levels, err = q.Levels(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), levels[0].CurrentStock)
	assert.True(t, cache.ok)
}

func TestRecomputeFromLedger_CoincideConElContador(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	p := f.store.AddProduct("Widget", "W-1", 0, 5, 100)
	_, err := f.engine.Apply(ctx, in(line(p, 20, "2.50")))
	require.NoError(t, err)
	_, err = f.engine.Apply(ctx, out(line(p, 18, "3.00")))
	require.NoError(t, err)

	q := inventory.NewInventoryQueryUseCase(f.store, f.store, nil, zerolog.Nop())
	balance, err := q.RecomputeFromLedger(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance)

	check, err := q.CheckProduct(ctx, p)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, int64(2), check.CurrentStock)

	_, err = q.RecomputeFromLedger(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = q.CheckProduct(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcile_ReportaDesajusteSinCorregir(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	a := f.store.AddProduct("A", "A-1", 0, 0, 100)
	b := f.store.AddProduct("B", "B-1", 0, 0, 100)
	_, err := f.engine.Apply(ctx, in(line(a, 10, "1"), line(b, 4, "1")))
	require.NoError(t, err)

	q := inventory.NewInventoryQueryUseCase(f.store, f.store, nil, zerolog.Nop())
	rep, err := q.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rep.Consistent)
	assert.Empty(t, rep.Drifts)

	f.store.SetStock(b, 9)
	rep, err = q.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, rep.Consistent)
	require.Len(t, rep.Drifts, 1)
	assert.Equal(t, b, rep.Drifts[0].ProductID)
	assert.Equal(t, int64(9), rep.Drifts[0].StoredStock)
	assert.Equal(t, int64(4), rep.Drifts[0].LedgerStock)
	assert.Equal(t, int64(5), rep.Drifts[0].Difference)
	assert.Equal(t, int64(9), f.store.Stock(b), "la reconciliación no corrige el contador")
}

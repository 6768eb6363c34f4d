package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

// InventoryQueryUseCase lado de lectura del inventario. Nunca muta estado.
// Sirve los contadores mantenidos por el motor; el recálculo desde el ledger es solo verificación.
type InventoryQueryUseCase struct {
	levelRepo   repository.InventoryLevelRepository
	productRepo repository.ProductRepository
	cache       InventoryCache
	log         zerolog.Logger
}

// NewInventoryQueryUseCase construye el servicio de consulta. cache puede ser nil.
func NewInventoryQueryUseCase(
	levelRepo repository.InventoryLevelRepository,
	productRepo repository.ProductRepository,
	cache InventoryCache,
	log zerolog.Logger,
) *InventoryQueryUseCase {
	return &InventoryQueryUseCase{levelRepo: levelRepo, productRepo: productRepo, cache: cache, log: log}
}

// Levels devuelve el stock actual de cada producto (ordenado por nombre), desde caché si está disponible.
func (uc *InventoryQueryUseCase) Levels(ctx context.Context) ([]entity.StockLevel, error) {
	var (
		generation int64
		refill     bool
	)
	if uc.cache != nil {
		levels, gen, ok, err := uc.cache.GetLevels(ctx)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Msg("leer caché de inventario")
		case ok:
			return levels, nil
		default:
			generation, refill = gen, true
		}
	}
	levels, err := uc.levelRepo.ListLevels(ctx)
	if err != nil {
		return nil, err
	}
	if refill {
		if err := uc.cache.SetLevels(ctx, generation, levels); err != nil {
			uc.log.Warn().Err(err).Msg("escribir caché de inventario")
		}
	}
	return levels, nil
}

// ListCurrentStock vista de inventario actual.
func (uc *InventoryQueryUseCase) ListCurrentStock(ctx context.Context) ([]dto.StockLevelResponse, error) {
	levels, err := uc.Levels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.StockLevelResponse{
			ProductID:    l.ProductID,
			Name:         l.Name,
			SKU:          l.SKU,
			CurrentStock: l.CurrentStock,
			MinStock:     l.MinStock,
			MaxStock:     l.MaxStock,
			Status:       l.Status(),
		})
	}
	return out, nil
}

// RecomputeFromLedger Σ IN − Σ OUT del producto según el ledger.
func (uc *InventoryQueryUseCase) RecomputeFromLedger(ctx context.Context, productID int64) (int64, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, domain.ErrNotFound
	}
	return uc.levelRepo.LedgerBalance(ctx, productID)
}

// CheckProduct compara el contador almacenado (lectura directa, sin caché) con el ledger.
func (uc *InventoryQueryUseCase) CheckProduct(ctx context.Context, productID int64) (*dto.LedgerBalanceResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	ledger, err := uc.levelRepo.LedgerBalance(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.LedgerBalanceResponse{
		ProductID:    p.ID,
		CurrentStock: p.CurrentStock,
		LedgerStock:  ledger,
		Consistent:   p.CurrentStock == ledger,
	}, nil
}

// Reconcile lista los productos cuyo contador difiere del ledger. No corrige nada.
func (uc *InventoryQueryUseCase) Reconcile(ctx context.Context) (*dto.ReconciliationResponse, error) {
	drifts, err := uc.levelRepo.ListDrifts(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.ReconciliationResponse{
		Consistent: len(drifts) == 0,
		Drifts:     make([]dto.StockDriftResponse, 0, len(drifts)),
	}
	for _, d := range drifts {
		uc.log.Warn().
			Int64("product_id", d.ProductID).
			Int64("stored_stock", d.StoredStock).
			Int64("ledger_stock", d.LedgerStock).
			Msg("contador de stock no coincide con el ledger")
		out.Drifts = append(out.Drifts, dto.StockDriftResponse{
			ProductID:   d.ProductID,
			Name:        d.Name,
			SKU:         d.SKU,
			StoredStock: d.StoredStock,
			LedgerStock: d.LedgerStock,
			Difference:  d.StoredStock - d.LedgerStock,
		})
	}
	return out, nil
}

package repository

import (
	"context"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// InventoryLevelRepository puerto de lectura para el servicio de consulta de inventario.
type InventoryLevelRepository interface {
	// ListLevels lee los contadores mantenidos, ordenados por nombre.
	ListLevels(ctx context.Context) ([]entity.StockLevel, error)
	// LedgerBalance Σ cantidades IN − Σ cantidades OUT del producto según el ledger.
	LedgerBalance(ctx context.Context, productID int64) (int64, error)
	// ListDrifts productos cuyo contador difiere de la suma del ledger.
	ListDrifts(ctx context.Context) ([]entity.StockDrift, error)
}

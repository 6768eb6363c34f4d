package repository

import (
	"context"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// StockRepository puerto del motor para leer y mutar el contador de stock.
// Solo es válido dentro de una transacción abierta por TxRunner.
type StockRepository interface {
	// LockForUpdate relee el producto y bloquea su fila (SELECT FOR UPDATE). nil si no existe.
	LockForUpdate(ctx context.Context, productID int64) (*entity.Product, error)
	// SaveStock persiste CurrentStock del producto previamente bloqueado.
	SaveStock(ctx context.Context, product *entity.Product) error
}

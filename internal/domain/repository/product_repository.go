package repository

import (
	"context"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Update no toca CurrentStock: el contador solo cambia vía StockRepository dentro del motor.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Count(ctx context.Context) (int, error)
	// HasDetails indica si algún detalle del ledger referencia el producto.
	HasDetails(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

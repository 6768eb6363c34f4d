package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL. Pensado para usarse con una tx.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock.
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// LockForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *StockRepo) LockForUpdate(ctx context.Context, productID int64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	p, err := scanProduct(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("lock product", err)
	}
	return p, nil
}

// SaveStock persiste el contador del producto.
func (r *StockRepo) SaveStock(ctx context.Context, product *entity.Product) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET current_stock = $2, updated_at = now() WHERE id = $1`,
		product.ID, product.CurrentStock,
	)
	if err != nil {
		return wrapErr("save stock", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("save stock: producto %d no actualizado", product.ID)
	}
	return nil
}

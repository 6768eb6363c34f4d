package repository

import (
	"context"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// TransactionRepository puerto del ledger (append-only).
// Append solo se invoca desde el motor dentro de su transacción; no revalida stock.
type TransactionRepository interface {
	// Append persiste cabecera y detalles; asigna ID y Date.
	Append(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id int64) (*entity.Transaction, error)
	// List devuelve transacciones con sus detalles, la más reciente primero.
	List(ctx context.Context, limit, offset int) ([]*entity.Transaction, error)
	Count(ctx context.Context) (int, error)
}

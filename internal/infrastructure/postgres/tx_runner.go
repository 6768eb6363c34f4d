package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout <= 0 deja el valor del servidor.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si fn devuelve error no queda nada persistido.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	ledgerRepo repository.TransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// SET no acepta parámetros; el valor viene de la configuración, no del cliente.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return wrapErr("set lock_timeout", err)
		}
	}

	if err := fn(NewStockRepository(tx), NewTransactionRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

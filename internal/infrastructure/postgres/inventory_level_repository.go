package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// ledgerBalanceCTE saldo por producto derivado del ledger: Σ IN − Σ OUT.
const ledgerBalanceCTE = `
	WITH ledger AS (
		SELECT d.product_id,
		       SUM(CASE WHEN t.type = 'IN' THEN d.quantity ELSE -d.quantity END)::BIGINT AS balance
		FROM transaction_details d
		JOIN transactions t ON t.id = d.transaction_id
		GROUP BY d.product_id
	)`

// InventoryLevelRepo implementación de InventoryLevelRepository sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

// ListLevels contadores de stock de todos los productos, ordenados por nombre.
func (r *InventoryLevelRepo) ListLevels(ctx context.Context) ([]entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, sku, current_stock, min_stock, max_stock
		FROM products
		ORDER BY name, id`)
	if err != nil {
		return nil, wrapErr("list stock levels", err)
	}
	defer rows.Close()

	var list []entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.ProductID, &l.Name, &l.SKU, &l.CurrentStock, &l.MinStock, &l.MaxStock); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list stock levels", err)
	}
	return list, nil
}

// LedgerBalance recalcula el stock de un producto desde el ledger. 0 si no tiene movimientos.
func (r *InventoryLevelRepo) LedgerBalance(ctx context.Context, productID int64) (int64, error) {
	var balance int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN t.type = 'IN' THEN d.quantity ELSE -d.quantity END), 0)::BIGINT
		FROM transaction_details d
		JOIN transactions t ON t.id = d.transaction_id
		WHERE d.product_id = $1`, productID,
	).Scan(&balance)
	if err != nil {
		return 0, wrapErr("ledger balance", err)
	}
	return balance, nil
}

// ListDrifts productos cuyo current_stock no coincide con el saldo del ledger.
func (r *InventoryLevelRepo) ListDrifts(ctx context.Context) ([]entity.StockDrift, error) {
	rows, err := r.q.Query(ctx, ledgerBalanceCTE+`
		SELECT p.id, p.name, p.sku, p.current_stock, COALESCE(l.balance, 0)
		FROM products p
		LEFT JOIN ledger l ON l.product_id = p.id
		WHERE p.current_stock <> COALESCE(l.balance, 0)
		ORDER BY p.name, p.id`)
	if err != nil {
		return nil, wrapErr("list stock drifts", err)
	}
	defer rows.Close()

	var list []entity.StockDrift
	for rows.Next() {
		var d entity.StockDrift
		if err := rows.Scan(&d.ProductID, &d.Name, &d.SKU, &d.StoredStock, &d.LedgerStock); err != nil {
			return nil, fmt.Errorf("scan stock drift: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list stock drifts", err)
	}
	return list, nil
}

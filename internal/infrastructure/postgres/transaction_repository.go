package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo ledger de transacciones sobre PostgreSQL (append-only).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Append debe recibir la tx del motor.
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const detailSelect = `
	SELECT d.id, d.transaction_id, d.product_id, p.name, p.sku, d.quantity, d.unit_price
	FROM transaction_details d
	JOIN products p ON p.id = d.product_id`

// Append inserta cabecera y detalles. Asigna ID y Date (reloj del servidor de BD).
func (r *TransactionRepo) Append(ctx context.Context, tx *entity.Transaction) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO transactions (type, reference, notes)
		VALUES ($1, $2, $3)
		RETURNING id, date`,
		string(tx.Type), tx.Reference, tx.Notes,
	).Scan(&tx.ID, &tx.Date)
	if err != nil {
		return wrapErr("insert transaction", err)
	}

	for i := range tx.Details {
		d := &tx.Details[i]
		d.TransactionID = tx.ID
		err := r.q.QueryRow(ctx, `
			INSERT INTO transaction_details (transaction_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			d.TransactionID, d.ProductID, d.Quantity, d.UnitPrice,
		).Scan(&d.ID)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return &domain.StockError{Kind: domain.ErrDuplicateLineItem, ProductID: d.ProductID}
			case isForeignKeyViolation(err):
				return &domain.StockError{Kind: domain.ErrProductNotFound, ProductID: d.ProductID}
			}
			return wrapErr("insert transaction detail", err)
		}
	}
	return nil
}

// GetByID obtiene una transacción con sus detalles. nil si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	var t entity.Transaction
	var txType string
	err := r.q.QueryRow(ctx,
		`SELECT id, type, date, reference, notes FROM transactions WHERE id = $1`, id,
	).Scan(&t.ID, &txType, &t.Date, &t.Reference, &t.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get transaction", err)
	}
	t.Type = entity.TransactionType(txType)

	details, err := r.details(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	t.Details = details[id]
	return &t, nil
}

// List devuelve transacciones con sus detalles, la más reciente primero.
func (r *TransactionRepo) List(ctx context.Context, limit, offset int) ([]*entity.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, type, date, reference, notes
		FROM transactions
		ORDER BY date DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list transactions", err)
	}
	defer rows.Close()

	var list []*entity.Transaction
	var ids []int64
	for rows.Next() {
		var t entity.Transaction
		var txType string
		if err := rows.Scan(&t.ID, &txType, &t.Date, &t.Reference, &t.Notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = entity.TransactionType(txType)
		list = append(list, &t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list transactions", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	details, err := r.details(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		t.Details = details[t.ID]
	}
	return list, nil
}

// Count total de transacciones del ledger.
func (r *TransactionRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, wrapErr("count transactions", err)
	}
	return n, nil
}

// details carga los detalles de varias transacciones en una sola consulta, en orden de inserción.
func (r *TransactionRepo) details(ctx context.Context, txIDs []int64) (map[int64][]entity.Detail, error) {
	rows, err := r.q.Query(ctx,
		detailSelect+` WHERE d.transaction_id = ANY($1) ORDER BY d.transaction_id, d.id`, txIDs)
	if err != nil {
		return nil, wrapErr("list transaction details", err)
	}
	defer rows.Close()

	out := make(map[int64][]entity.Detail, len(txIDs))
	for rows.Next() {
		var d entity.Detail
		if err := rows.Scan(
			&d.ID, &d.TransactionID, &d.ProductID, &d.ProductName, &d.ProductSKU, &d.Quantity, &d.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan transaction detail: %w", err)
		}
		out[d.TransactionID] = append(out[d.TransactionID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list transaction details", err)
	}
	return out, nil
}

package postgres

import (
	"context"
	"fmt"
)

// ResetInventory vacía productos y ledger y reinicia las secuencias. Solo para seed y tests.
func ResetInventory(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, `TRUNCATE transaction_details, transactions, products RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("reset inventario: %w", err)
	}
	return nil
}

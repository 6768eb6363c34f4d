package inventory

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// maxUnitPrice límite de NUMERIC(10,2): 8 dígitos enteros.
var maxUnitPrice = decimal.New(1, 8)

// validateRequest etapa sin estado del pipeline: se ejecuta antes de abrir la transacción.
// Orden: tipo, líneas no vacías, cantidad en [1, MaxLineQuantity], precio, producto repetido.
func validateRequest(in ApplyInput) error {
	if !in.Type.Valid() {
		return fmt.Errorf("%w: %q (use IN u OUT)", domain.ErrInvalidTransactionType, in.Type)
	}
	if len(in.Lines) == 0 {
		return domain.ErrEmptyLineItems
	}
	if len(in.Reference) > entity.MaxReferenceLength {
		return fmt.Errorf("%w: reference supera %d caracteres", domain.ErrInvalidInput, entity.MaxReferenceLength)
	}
	for _, line := range in.Lines {
		if line.Quantity <= 0 || line.Quantity > entity.MaxLineQuantity {
			return &domain.StockError{Kind: domain.ErrInvalidQuantity, ProductID: line.ProductID, Requested: line.Quantity}
		}
		if !validUnitPrice(line.UnitPrice) {
			return &domain.StockError{Kind: domain.ErrInvalidUnitPrice, ProductID: line.ProductID}
		}
	}
	seen := make(map[int64]struct{}, len(in.Lines))
	for _, line := range in.Lines {
		if _, dup := seen[line.ProductID]; dup {
			return &domain.StockError{Kind: domain.ErrDuplicateLineItem, ProductID: line.ProductID}
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// validateAgainstStock etapa con estado: corre con todas las filas ya bloqueadas y antes de mutar.
func validateAgainstStock(in ApplyInput, locked map[int64]*entity.Product) error {
	for _, line := range in.Lines {
		p, ok := locked[line.ProductID]
		if !ok || p == nil {
			return &domain.StockError{Kind: domain.ErrProductNotFound, ProductID: line.ProductID}
		}
		if in.Type == entity.TransactionTypeIN && p.CurrentStock > math.MaxInt64-line.Quantity {
			return &domain.StockError{
				Kind:        domain.ErrInvalidQuantity,
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.CurrentStock,
				Requested:   line.Quantity,
			}
		}
		if in.Type == entity.TransactionTypeOUT && p.CurrentStock < line.Quantity {
			return &domain.StockError{
				Kind:        domain.ErrInsufficientStock,
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.CurrentStock,
				Requested:   line.Quantity,
			}
		}
	}
	return nil
}

func validUnitPrice(p decimal.Decimal) bool {
	if p.IsNegative() || !p.Equal(p.Round(2)) {
		return false
	}
	return p.LessThan(maxUnitPrice)
}

// lockOrder ids únicos en orden ascendente: orden determinista de bloqueo para evitar deadlocks.
func lockOrder(lines []LineItem) []int64 {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// errorKind etiqueta corta del tipo de error (logs y métricas).
func errorKind(err error) string {
	kinds := []struct {
		err   error
		label string
	}{
		{domain.ErrInvalidTransactionType, "invalid_type"},
		{domain.ErrEmptyLineItems, "empty"},
		{domain.ErrInvalidQuantity, "invalid_quantity"},
		{domain.ErrInvalidUnitPrice, "invalid_price"},
		{domain.ErrDuplicateLineItem, "duplicate_line"},
		{domain.ErrProductNotFound, "product_not_found"},
		{domain.ErrInsufficientStock, "insufficient_stock"},
		{domain.ErrInvalidInput, "invalid_input"},
		{domain.ErrTransient, "transient"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.label
		}
	}
	return "error"
}

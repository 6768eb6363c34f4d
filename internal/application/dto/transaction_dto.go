package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// ApplyTransactionRequest body para POST /api/transactions.
type ApplyTransactionRequest struct {
	Type      string            `json:"type"` // IN | OUT
	Reference string            `json:"reference"`
	Notes     string            `json:"notes"`
	Details   []LineItemRequest `json:"details"`
}

// LineItemRequest línea de la transacción. La cantidad siempre es positiva; la dirección la da Type.
type LineItemRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// DetailResponse línea persistida con nombre y SKU del producto.
type DetailResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ThresholdWarningResponse alerta no bloqueante devuelta junto con la transacción.
type ThresholdWarningResponse struct {
	Kind         string `json:"kind"` // BELOW_MIN | ABOVE_MAX
	ProductID    int64  `json:"product_id"`
	SKU          string `json:"sku"`
	CurrentStock int64  `json:"current_stock"`
	MinStock     int64  `json:"min_stock"`
	MaxStock     int64  `json:"max_stock"`
}

// TransactionResponse salida de una transacción del ledger.
type TransactionResponse struct {
	ID         int64                      `json:"id"`
	Type       string                     `json:"type"`
	Date       time.Time                  `json:"date"`
	Reference  string                     `json:"reference"`
	Notes      string                     `json:"notes"`
	TotalItems int64                      `json:"total_items"`
	TotalValue decimal.Decimal            `json:"total_value"`
	Details    []DetailResponse           `json:"details"`
	Warnings   []ThresholdWarningResponse `json:"warnings,omitempty"`
}

// TransactionListResponse lista paginada del ledger (más reciente primero).
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ToTransactionResponse mapea la entidad (y sus alertas, si las hay) a la salida HTTP.
func ToTransactionResponse(t *entity.Transaction, warnings []entity.ThresholdWarning) *TransactionResponse {
	if t == nil {
		return nil
	}
	details := make([]DetailResponse, 0, len(t.Details))
	for _, d := range t.Details {
		details = append(details, DetailResponse{
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			ProductSKU:  d.ProductSKU,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice.Round(2),
			Subtotal:    d.Subtotal().Round(2),
		})
	}
	out := &TransactionResponse{
		ID:         t.ID,
		Type:       string(t.Type),
		Date:       t.Date,
		Reference:  t.Reference,
		Notes:      t.Notes,
		TotalItems: t.TotalItems(),
		TotalValue: t.TotalValue().Round(2),
		Details:    details,
	}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, ThresholdWarningResponse{
			Kind:         w.Kind,
			ProductID:    w.ProductID,
			SKU:          w.SKU,
			CurrentStock: w.CurrentStock,
			MinStock:     w.MinStock,
			MaxStock:     w.MaxStock,
		})
	}
	return out
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType dirección del movimiento. La cantidad de cada detalle siempre es positiva.
type TransactionType string

// Tipos de transacción de stock.
const (
	TransactionTypeIN  TransactionType = "IN"  // entrada
	TransactionTypeOUT TransactionType = "OUT" // salida
)

// Valid indica si el tipo es IN u OUT.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIN || t == TransactionTypeOUT
}

const (
	// MaxReferenceLength longitud máxima de la referencia externa (OC, OV, ...).
	MaxReferenceLength = 100
	// MaxLineQuantity cantidad máxima por línea.
	MaxLineQuantity int64 = 1_000_000_000
)

// Transaction evento de movimiento de inventario. Inmutable una vez confirmado.
type Transaction struct {
	ID        int64
	Type      TransactionType
	Date      time.Time // asignada por el servidor
	Reference string
	Notes     string
	Details   []Detail
}

// TotalItems suma de las cantidades de sus detalles.
func (t *Transaction) TotalItems() int64 {
	var total int64
	for _, d := range t.Details {
		total += d.Quantity
	}
	return total
}

// TotalValue suma de cantidad × precio unitario.
func (t *Transaction) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, d := range t.Details {
		total = total.Add(d.Subtotal())
	}
	return total
}

// Detail línea de producto dentro de una transacción. (TransactionID, ProductID) es único.
type Detail struct {
	ID            int64
	TransactionID int64
	ProductID     int64
	ProductName   string // solo lectura (join)
	ProductSKU    string // solo lectura (join)
	Quantity      int64
	UnitPrice     decimal.Decimal // precio histórico, 2 decimales
}

// Subtotal cantidad × precio unitario.
func (d Detail) Subtotal() decimal.Decimal {
	return d.UnitPrice.Mul(decimal.NewFromInt(d.Quantity))
}

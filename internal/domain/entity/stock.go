package entity

import "time"

// StockLevel vista de lectura del stock actual de un producto.
type StockLevel struct {
	ProductID    int64
	Name         string
	SKU          string
	CurrentStock int64
	MinStock     int64
	MaxStock     int64
}

// Status clasifica el nivel respecto a los umbrales: LOW, OVER u OK.
func (s StockLevel) Status() string {
	switch {
	case s.CurrentStock < s.MinStock:
		return "LOW"
	case s.CurrentStock > s.MaxStock:
		return "OVER"
	default:
		return "OK"
	}
}

// Tipos de alerta de umbral.
const (
	ThresholdBelowMin = "BELOW_MIN"
	ThresholdAboveMax = "ABOVE_MAX"
)

// ThresholdWarning señal no bloqueante: el stock salió de [MinStock, MaxStock] tras una transacción.
type ThresholdWarning struct {
	ID            string
	Kind          string
	TransactionID int64
	ProductID     int64
	ProductName   string
	SKU           string
	CurrentStock  int64
	MinStock      int64
	MaxStock      int64
	At            time.Time
}

// StockDrift diferencia entre el contador almacenado y el derivado del ledger.
type StockDrift struct {
	ProductID   int64
	Name        string
	SKU         string
	StoredStock int64
	LedgerStock int64
}

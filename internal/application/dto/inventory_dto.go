package dto

// StockLevelResponse fila de la vista de inventario actual (GET /api/inventory).
type StockLevelResponse struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	CurrentStock int64  `json:"current_stock"`
	MinStock     int64  `json:"min_stock"`
	MaxStock     int64  `json:"max_stock"`
	Status       string `json:"status"` // LOW | OVER | OK
}

// LedgerBalanceResponse contador almacenado frente al recalculado desde el ledger.
type LedgerBalanceResponse struct {
	ProductID    int64 `json:"product_id"`
	CurrentStock int64 `json:"current_stock"`
	LedgerStock  int64 `json:"ledger_stock"`
	Consistent   bool  `json:"consistent"`
}

// StockDriftResponse producto cuyo contador no coincide con el ledger.
type StockDriftResponse struct {
	ProductID   int64  `json:"product_id"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	StoredStock int64  `json:"stored_stock"`
	LedgerStock int64  `json:"ledger_stock"`
	Difference  int64  `json:"difference"` // stored - ledger
}

// ReconciliationResponse resultado de la reconciliación completa.
type ReconciliationResponse struct {
	Consistent bool                 `json:"consistent"`
	Drifts     []StockDriftResponse `json:"drifts"`
}

// ReplenishmentSuggestionResponse producto bajo su mínimo y el pedido sugerido para llegar al máximo.
type ReplenishmentSuggestionResponse struct {
	Priority          int    `json:"priority"`
	ProductID         int64  `json:"product_id"`
	Name              string `json:"name"`
	SKU               string `json:"sku"`
	CurrentStock      int64  `json:"current_stock"`
	MinStock          int64  `json:"min_stock"`
	MaxStock          int64  `json:"max_stock"`
	Deficit           int64  `json:"deficit"`
	SuggestedOrderQty int64  `json:"suggested_order_qty"`
}

package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: Commit si fn devuelve nil, Rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.TransactionRepository,
	) error) error
}

// ThresholdNotifier publica alertas de umbral ya confirmadas (Kafka, log, ...). El motor lo llama
// en segundo plano, fuera de la petición, con un contexto propio acotado en el tiempo.
type ThresholdNotifier interface {
	Notify(ctx context.Context, warnings []entity.ThresholdWarning) error
}

// InventoryCache caché de la vista de inventario actual. Se invalida tras cada commit del motor
// y tras cada cambio del registro de productos.
//
// Cada Invalidate avanza una generación. GetLevels devuelve en miss la generación vigente y SetLevels
// solo guarda si sigue siendo la misma, así una lectura que empezó antes de un commit no repone datos viejos.
type InventoryCache interface {
	GetLevels(ctx context.Context) (levels []entity.StockLevel, generation int64, ok bool, err error)
	SetLevels(ctx context.Context, generation int64, levels []entity.StockLevel) error
	Invalidate(ctx context.Context) error
}

// Metrics registro de métricas del motor.
type Metrics interface {
	ObserveApply(txType, outcome string, elapsed time.Duration)
	IncThresholdWarning(kind string)
}

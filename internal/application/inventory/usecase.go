package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

// notifyTimeout tope de una publicación de alertas desacoplada de la petición.
const notifyTimeout = 10 * time.Second

// ApplyTransactionUseCase motor de mutación de stock: valida una transacción de varias líneas y,
// en una sola transacción de BD, bloquea cada producto (SELECT FOR UPDATE en orden ascendente de id),
// actualiza los contadores y agrega cabecera + detalles al ledger. Todo o nada.
type ApplyTransactionUseCase struct {
	txRunner TxRunner
	notifier ThresholdNotifier
	cache    InventoryCache
	metrics  Metrics
	log      zerolog.Logger
	now      func() time.Time

	// publicaciones de alertas en curso
	pending sync.WaitGroup
}

// NewApplyTransactionUseCase construye el motor. notifier, cache y metrics pueden ser nil.
func NewApplyTransactionUseCase(
	txRunner TxRunner,
	notifier ThresholdNotifier,
	cache InventoryCache,
	metrics Metrics,
	log zerolog.Logger,
) *ApplyTransactionUseCase {
	return &ApplyTransactionUseCase{
		txRunner: txRunner,
		notifier: notifier,
		cache:    cache,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// LineItem una línea {producto, cantidad, precio unitario}.
type LineItem struct {
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
}

// ApplyInput solicitud de transacción.
type ApplyInput struct {
	Type      entity.TransactionType
	Reference string
	Notes     string
	Lines     []LineItem
}

// ApplyResult transacción confirmada y alertas de umbral emitidas por ella.
type ApplyResult struct {
	Transaction *entity.Transaction
	Warnings    []entity.ThresholdWarning
}

// Apply valida y aplica la transacción. Ante cualquier rechazo no queda nada persistido.
func (uc *ApplyTransactionUseCase) Apply(ctx context.Context, input ApplyInput) (*ApplyResult, error) {
	start := uc.now()
	result, err := uc.apply(ctx, input)
	uc.observe(input.Type, err, uc.now().Sub(start))
	if err != nil {
		ev := uc.log.Info()
		if !domain.IsValidation(err) {
			ev = uc.log.Error()
		}
		ev.Err(err).
			Str("type", string(input.Type)).
			Str("kind", errorKind(err)).
			Int("lines", len(input.Lines)).
			Msg("transacción rechazada")
		return nil, err
	}

	uc.log.Info().
		Int64("transaction_id", result.Transaction.ID).
		Str("type", string(result.Transaction.Type)).
		Int("lines", len(result.Transaction.Details)).
		Int64("total_items", result.Transaction.TotalItems()).
		Msg("transacción aplicada")

	// Fuera de la transacción: el commit ya ocurrió y un fallo aquí no debe revertirlo.
	postCtx := context.WithoutCancel(ctx)
	uc.emitWarnings(postCtx, result.Warnings)
	if uc.cache != nil {
		if err := uc.cache.Invalidate(postCtx); err != nil {
			uc.log.Warn().Err(err).Msg("invalidar caché de inventario")
		}
	}
	return result, nil
}

func (uc *ApplyTransactionUseCase) apply(ctx context.Context, input ApplyInput) (*ApplyResult, error) {
	if err := validateRequest(input); err != nil {
		return nil, err
	}
	ids := lockOrder(input.Lines)

	record := &entity.Transaction{
		Type:      input.Type,
		Reference: input.Reference,
		Notes:     input.Notes,
	}
	var warnings []entity.ThresholdWarning

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.TransactionRepository,
	) error {
		warnings = warnings[:0]

		locked := make(map[int64]*entity.Product, len(ids))
		for _, id := range ids {
			p, err := stockRepo.LockForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return &domain.StockError{Kind: domain.ErrProductNotFound, ProductID: id}
			}
			locked[id] = p
		}

		if err := validateAgainstStock(input, locked); err != nil {
			return err
		}

		details := make([]entity.Detail, 0, len(input.Lines))
		for _, line := range input.Lines {
			p := locked[line.ProductID]
			if input.Type == entity.TransactionTypeIN {
				p.CurrentStock += line.Quantity
			} else {
				p.CurrentStock -= line.Quantity
			}
			if w, ok := evaluateThreshold(p, input.Type); ok {
				warnings = append(warnings, w)
			}
			details = append(details, entity.Detail{
				ProductID:   p.ID,
				ProductName: p.Name,
				ProductSKU:  p.SKU,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice.Round(2),
			})
		}

		for _, id := range ids {
			if err := stockRepo.SaveStock(ctx, locked[id]); err != nil {
				return err
			}
		}

		record.Details = details
		return ledgerRepo.Append(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	for i := range warnings {
		warnings[i].TransactionID = record.ID
		warnings[i].At = record.Date
	}
	return &ApplyResult{Transaction: record, Warnings: warnings}, nil
}

// evaluateThreshold: IN que deja el stock sobre MaxStock, u OUT que lo deja bajo MinStock.
func evaluateThreshold(p *entity.Product, t entity.TransactionType) (entity.ThresholdWarning, bool) {
	var kind string
	switch {
	case t == entity.TransactionTypeIN && p.AboveMax():
		kind = entity.ThresholdAboveMax
	case t == entity.TransactionTypeOUT && p.BelowMin():
		kind = entity.ThresholdBelowMin
	default:
		return entity.ThresholdWarning{}, false
	}
	return entity.ThresholdWarning{
		ID:           uuid.New().String(),
		Kind:         kind,
		ProductID:    p.ID,
		ProductName:  p.Name,
		SKU:          p.SKU,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
	}, true
}

func (uc *ApplyTransactionUseCase) emitWarnings(ctx context.Context, warnings []entity.ThresholdWarning) {
	if len(warnings) == 0 {
		return
	}
	for _, w := range warnings {
		uc.log.Warn().
			Str("kind", w.Kind).
			Int64("transaction_id", w.TransactionID).
			Int64("product_id", w.ProductID).
			Str("sku", w.SKU).
			Int64("current_stock", w.CurrentStock).
			Int64("min_stock", w.MinStock).
			Int64("max_stock", w.MaxStock).
			Msg("stock fuera de umbral")
		if uc.metrics != nil {
			uc.metrics.IncThresholdWarning(w.Kind)
		}
	}
	if uc.notifier == nil {
		return
	}
	// Un broker lento no debe retrasar la respuesta de una transacción ya confirmada.
	uc.pending.Add(1)
	go func() {
		defer uc.pending.Done()
		nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := uc.notifier.Notify(nctx, warnings); err != nil {
			uc.log.Error().Err(err).Int("warnings", len(warnings)).Msg("publicar alertas de umbral")
		}
	}()
}

// Wait bloquea hasta que terminen las publicaciones de alertas en curso. Se llama en el apagado,
// antes de cerrar el notificador.
func (uc *ApplyTransactionUseCase) Wait() {
	uc.pending.Wait()
}

func (uc *ApplyTransactionUseCase) observe(t entity.TransactionType, err error, elapsed time.Duration) {
	if uc.metrics == nil {
		return
	}
	outcome := "committed"
	if err != nil {
		outcome = errorKind(err)
	}
	label := string(t)
	if !t.Valid() {
		label = "invalid"
	}
	uc.metrics.ObserveApply(label, outcome, elapsed)
}

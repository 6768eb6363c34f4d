package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/testutil/memstore"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

type recordingNotifier struct {
	mu       sync.Mutex
	warnings []entity.ThresholdWarning
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, w []entity.ThresholdWarning) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, w...)
	return n.err
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	warnings map[string]int
}

func (m *recordingMetrics) ObserveApply(txType, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, txType+":"+outcome)
}

func (m *recordingMetrics) IncThresholdWarning(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.warnings == nil {
		m.warnings = map[string]int{}
	}
	m.warnings[kind]++
}

type countingCache struct {
	mu          sync.Mutex
	invalidated int
}

func (c *countingCache) GetLevels(context.Context) ([]entity.StockLevel, int64, bool, error) {
	return nil, 0, false, nil
}
func (c *countingCache) SetLevels(context.Context, int64, []entity.StockLevel) error { return nil }
func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

type engineFixture struct {
	store    *memstore.Store
	engine   *inventory.ApplyTransactionUseCase
	notifier *recordingNotifier
	metrics  *recordingMetrics
	cache    *countingCache
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		store:    memstore.New(),
		notifier: &recordingNotifier{},
		metrics:  &recordingMetrics{},
		cache:    &countingCache{},
	}
	f.engine = inventory.NewApplyTransactionUseCase(f.store, f.notifier, f.cache, f.metrics, zerolog.Nop())
	return f
}

func line(productID, qty int64, price string) inventory.LineItem {
	return inventory.LineItem{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func in(lines ...inventory.LineItem) inventory.ApplyInput {
	return inventory.ApplyInput{Type: entity.TransactionTypeIN, Lines: lines}
}

func out(lines ...inventory.LineItem) inventory.ApplyInput {
	return inventory.ApplyInput{Type: entity.TransactionTypeOUT, Lines: lines}
}

// assertLedgerConsistent el contador de cada producto coincide con Σ IN − Σ OUT del ledger.
func assertLedgerConsistent(t *testing.T, store *memstore.Store) {
	t.Helper()
	drifts, err := store.ListDrifts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifts, "contador y ledger deben coincidir")
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EscenarioWidget(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	widget := f.store.AddProduct("Widget", "W-1", 0, 5, 100)

	res, err := f.engine.Apply(ctx, in(line(widget, 20, "2.50")))
	require.NoError(t, err)
	assert.Equal(t, int64(20), f.store.Stock(widget))
	assert.Empty(t, res.Warnings)
	assert.Equal(t, int64(20), res.Transaction.TotalItems())
	assert.True(t, decimal.RequireFromString("50").Equal(res.Transaction.TotalValue()))

	_, err = f.engine.Apply(ctx, out(line(widget, 25, "0")))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, int64(20), se.Available)
	assert.Equal(t, int64(25), se.Requested)
	assert.Contains(t, err.Error(), "Widget")
	assert.Equal(t, int64(20), f.store.Stock(widget), "el rechazo no debe modificar el stock")

	res, err = f.engine.Apply(ctx, out(line(widget, 18, "0")))
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.store.Stock(widget))
	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, entity.ThresholdBelowMin, w.Kind)
	assert.Equal(t, widget, w.ProductID)
	assert.Equal(t, int64(2), w.CurrentStock)
	assert.Equal(t, res.Transaction.ID, w.TransactionID)
	assert.NotEmpty(t, w.ID)

	f.engine.Wait()
	require.Len(t, f.notifier.warnings, 1, "la alerta se publica después del commit")
	assert.Equal(t, 1, f.metrics.warnings[entity.ThresholdBelowMin])
	assert.Equal(t, 2, f.store.TransactionCount())
	assert.Equal(t, []string{"IN:committed", "OUT:insufficient_stock", "OUT:committed"}, f.metrics.outcomes)
	assert.Equal(t, 2, f.cache.invalidated, "solo las transacciones confirmadas invalidan la caché")
	assertLedgerConsistent(t, f.store)
}

func TestApply_INSobreMaximoEmiteAlertaSinBloquear(t *testing.T) {
	f := newEngine(t)
	p := f.store.AddProduct("Tornillo", "T-1", 90, 0, 100)

	res, err := f.engine.Apply(context.Background(), in(line(p, 20, "0.10")))
	require.NoError(t, err)
	assert.Equal(t, int64(110), f.store.Stock(p))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, entity.ThresholdAboveMax, res.Warnings[0].Kind)
}

func TestApply_FalloDelNotificadorNoRevierte(t *testing.T) {
	f := newEngine(t)
	f.notifier.err = errors.New("broker caído")
	p := f.store.AddProduct("Tuerca", "N-1", 10, 5, 100)

	res, err := f.engine.Apply(context.Background(), out(line(p, 8, "1.00")))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, int64(2), f.store.Stock(p))
	f.engine.Wait()
}

// blockingNotifier retiene Notify hasta que se cierra release.
type blockingNotifier struct {
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	got     []entity.ThresholdWarning
	ctxErr  error
}

func (n *blockingNotifier) Notify(ctx context.Context, w []entity.ThresholdWarning) error {
	close(n.started)
	<-n.release
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, w...)
	n.ctxErr = ctx.Err()
	return nil
}

func TestApply_BrokerLentoNoRetrasaLaRespuesta(t *testing.T) {
	store := memstore.New()
	notifier := &blockingNotifier{started: make(chan struct{}), release: make(chan struct{})}
	engine := inventory.NewApplyTransactionUseCase(store, notifier, nil, nil, zerolog.Nop())
	p := store.AddProduct("Tuerca", "N-1", 10, 5, 100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := engine.Apply(ctx, out(line(p, 8, "1.00")))
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Apply quedó esperando al notificador")
	}
	<-notifier.started
	cancel()

	close(notifier.release)
	engine.Wait()
	require.Len(t, notifier.got, 1)
	assert.Equal(t, int64(2), notifier.got[0].CurrentStock)
	assert.NoError(t, notifier.ctxErr, "cancelar la petición no cancela la publicación")
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidad
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_LineaInsuficienteNoAplicaNingunaLinea(t *testing.T) {
	f := newEngine(t)
	a := f.store.AddProduct("A", "A-1", 50, 0, 1000)
	b := f.store.AddProduct("B", "B-1", 3, 0, 1000)

	_, err := f.engine.Apply(context.Background(), out(line(a, 10, "1"), line(b, 4, "1")))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(50), f.store.Stock(a))
	assert.Equal(t, int64(3), f.store.Stock(b))
	assert.Zero(t, f.store.TransactionCount())
}

func TestApply_ProductoRepetidoNoPersisteDetalles(t *testing.T) {
	f := newEngine(t)
	a := f.store.AddProduct("A", "A-1", 0, 0, 1000)

	_, err := f.engine.Apply(context.Background(), in(line(a, 1, "1"), line(a, 2, "1")))
	require.ErrorIs(t, err, domain.ErrDuplicateLineItem)
	assert.Zero(t, f.store.TransactionCount())
	assert.Zero(t, f.store.Stock(a))
	assert.Zero(t, f.store.Runs, "el rechazo sin estado no abre transacción")
}

func TestApply_FalloTransitorioNoPersisteNada(t *testing.T) {
	f := newEngine(t)
	f.store.FailCommit = fmt.Errorf("commit transaction: %w: %w", domain.ErrTransient, errors.New("conn reset"))
	a := f.store.AddProduct("A", "A-1", 5, 0, 1000)

	_, err := f.engine.Apply(context.Background(), in(line(a, 5, "1")))
	require.ErrorIs(t, err, domain.ErrTransient)
	assert.False(t, domain.IsValidation(err))
	assert.Equal(t, int64(5), f.store.Stock(a))
	assert.Zero(t, f.store.TransactionCount())
	assert.Equal(t, []string{"IN:transient"}, f.metrics.outcomes)
	assert.Zero(t, f.cache.invalidated)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pipeline de validación
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_OrdenDeValidacion(t *testing.T) {
	f := newEngine(t)
	a := f.store.AddProduct("A", "A-1", 1, 0, 1000)

	cases := []struct {
		name  string
		input inventory.ApplyInput
		want  error
	}{
		{"tipo inválido gana sobre líneas vacías", inventory.ApplyInput{Type: "MOVE"}, domain.ErrInvalidTransactionType},
		{"sin líneas", in(), domain.ErrEmptyLineItems},
		{"cantidad cero", in(line(a, 0, "1")), domain.ErrInvalidQuantity},
		{"cantidad negativa en OUT", out(line(a, -3, "1")), domain.ErrInvalidQuantity},
		{"cantidad sobre el máximo por línea", in(line(a, entity.MaxLineQuantity+1, "1")), domain.ErrInvalidQuantity},
		{"cantidad máxima de int64", in(line(a, math.MaxInt64, "1")), domain.ErrInvalidQuantity},
		{"cantidad inválida gana sobre repetido", in(line(a, 1, "1"), line(a, 0, "1")), domain.ErrInvalidQuantity},
		{"precio negativo", in(line(a, 1, "-0.01")), domain.ErrInvalidUnitPrice},
		{"precio con tres decimales", in(line(a, 1, "2.505")), domain.ErrInvalidUnitPrice},
		{"precio fuera de NUMERIC(10,2)", in(line(a, 1, "100000000")), domain.ErrInvalidUnitPrice},
		{"repetido gana sobre producto inexistente", in(line(999, 1, "1"), line(999, 1, "1")), domain.ErrDuplicateLineItem},
		{"producto inexistente", in(line(a, 1, "1"), line(999, 1, "1")), domain.ErrProductNotFound},
		{"producto inexistente gana sobre insuficiente", out(line(a, 5, "1"), line(999, 1, "1")), domain.ErrProductNotFound},
		{"insuficiente", out(line(a, 2, "1")), domain.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Apply(context.Background(), tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, domain.IsValidation(err))
		})
	}
	assert.Equal(t, int64(1), f.store.Stock(a))
	assert.Zero(t, f.store.TransactionCount())
}

func TestApply_INQueDesbordariaElContadorSeRechazaSinMutar(t *testing.T) {
	f := newEngine(t)
	near := f.store.AddProduct("Tornillo", "T-1", 0, 0, 1000)
	f.store.SetStock(near, math.MaxInt64-10)
	other := f.store.AddProduct("Arandela", "A-1", 5, 0, 1000)

	_, err := f.engine.Apply(context.Background(), in(line(other, 3, "1"), line(near, 11, "1")))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "Tornillo")

	assert.Equal(t, int64(math.MaxInt64-10), f.store.Stock(near))
	assert.Equal(t, int64(5), f.store.Stock(other))
	assert.Zero(t, f.store.TransactionCount())

	_, err = f.engine.Apply(context.Background(), in(line(near, 10, "1")))
	require.NoError(t, err, "llegar exactamente al máximo representable es válido")
	assert.Equal(t, int64(math.MaxInt64), f.store.Stock(near))
}

func TestApply_ReferenciaDemasiadoLarga(t *testing.T) {
	f := newEngine(t)
	a := f.store.AddProduct("A", "A-1", 0, 0, 1000)
	input := in(line(a, 1, "1"))
	input.Reference = string(make([]byte, entity.MaxReferenceLength+1))

	_, err := f.engine.Apply(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyFromRequest_NormalizaTipoYMapeaDetalles(t *testing.T) {
	f := newEngine(t)
	a := f.store.AddProduct("Widget", "W-1", 0, 0, 1000)

	resp, err := f.engine.ApplyFromRequest(context.Background(), dto.ApplyTransactionRequest{
		Type:      " in ",
		Reference: "  OC-1 ",
		Details: []dto.LineItemRequest{
			{ProductID: a, Quantity: 3, UnitPrice: decimal.RequireFromString("1.25")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "IN", resp.Type)
	assert.Equal(t, "OC-1", resp.Reference)
	assert.Equal(t, int64(3), resp.TotalItems)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "Widget", resp.Details[0].ProductName)
	assert.Equal(t, "W-1", resp.Details[0].ProductSKU)
	assert.Equal(t, "3.75", resp.Details[0].Subtotal.StringFixed(2))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y derivación
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_SalidasConcurrentesNoSobregiran(t *testing.T) {
	f := newEngine(t)
	p := f.store.AddProduct("Widget", "W-1", 0, 0, 1000)
	_, err := f.engine.Apply(context.Background(), in(line(p, 10, "1")))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.Apply(context.Background(), out(line(p, 8, "1")))
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(2), f.store.Stock(p))
	assertLedgerConsistent(t, f.store)
}

func TestApply_LeyDeDerivacionTrasSecuenciaMixta(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	a := f.store.AddProduct("A", "A-1", 0, 0, 1000)
	b := f.store.AddProduct("B", "B-1", 0, 0, 1000)
	c := f.store.AddProduct("C", "C-1", 0, 0, 1000)

	inputs := []inventory.ApplyInput{
		in(line(a, 30, "1"), line(b, 10, "2"), line(c, 5, "3")),
		out(line(b, 4, "2"), line(a, 12, "1")),
		out(line(c, 6, "3")), // insuficiente: no cuenta
		in(line(c, 1, "3")),
		out(line(a, 18, "1"), line(c, 6, "3")),
		in(line(b, 0, "1")), // cantidad inválida
	}
	var wg sync.WaitGroup
	for _, input := range inputs {
		wg.Add(1)
		go func(input inventory.ApplyInput) {
			defer wg.Done()
			_, _ = f.engine.Apply(ctx, input)
		}(input)
	}
	wg.Wait()

	for _, id := range []int64{a, b, c} {
		balance, err := f.store.LedgerBalance(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, f.store.Stock(id), balance)
		assert.GreaterOrEqual(t, f.store.Stock(id), int64(0))
	}
	assertLedgerConsistent(t, f.store)
}

func TestApply_ContextoCanceladoNoPersiste(t *testing.T) {
	f := newEngine(t)
	a := f.store.AddProduct("A", "A-1", 0, 0, 1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.Apply(ctx, in(line(a, 1, "1")))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.store.Stock(a))
}

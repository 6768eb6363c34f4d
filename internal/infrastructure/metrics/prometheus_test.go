package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-tracker/internal/infrastructure/metrics"
)

func TestInventoryMetrics_CuentaPorTipoYResultado(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewInventoryMetrics(reg)

	m.ObserveApply("OUT", "committed", 5*time.Millisecond)
	m.ObserveApply("OUT", "committed", 7*time.Millisecond)
	m.ObserveApply("OUT", "insufficient_stock", time.Millisecond)
	m.IncThresholdWarning("BELOW_MIN")

	expected := `
# HELP stock_transactions_total Transacciones de stock procesadas por tipo y resultado
# TYPE stock_transactions_total counter
stock_transactions_total{outcome="committed",type="OUT"} 2
stock_transactions_total{outcome="insufficient_stock",type="OUT"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "stock_transactions_total"))

	count, err := testutil.GatherAndCount(reg, "stock_transaction_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "una serie por tipo")

	count, err = testutil.GatherAndCount(reg, "stock_threshold_warnings_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInventoryMetrics_RegistroDuplicadoFalla(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewInventoryMetrics(reg)
	assert.Panics(t, func() { metrics.NewInventoryMetrics(reg) })
}

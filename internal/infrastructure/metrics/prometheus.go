// Package metrics expone las métricas del motor de inventario en Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/stock-tracker/internal/application/inventory"
)

var _ inventory.Metrics = (*InventoryMetrics)(nil)

// InventoryMetrics contadores e histograma de las transacciones aplicadas.
type InventoryMetrics struct {
	applyTotal        *prometheus.CounterVec
	applyDuration     *prometheus.HistogramVec
	thresholdWarnings *prometheus.CounterVec
}

// NewInventoryMetrics crea y registra las métricas en reg (prometheus.DefaultRegisterer en producción).
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	m := &InventoryMetrics{
		applyTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock",
				Name:      "transactions_total",
				Help:      "Transacciones de stock procesadas por tipo y resultado",
			},
			[]string{"type", "outcome"},
		),
		applyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stock",
				Name:      "transaction_duration_seconds",
				Help:      "Duración de la aplicación de una transacción de stock",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		thresholdWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stock",
				Name:      "threshold_warnings_total",
				Help:      "Alertas de umbral emitidas (BELOW_MIN, ABOVE_MAX)",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.applyTotal, m.applyDuration, m.thresholdWarnings)
	return m
}

// ObserveApply registra el resultado y la duración de una transacción.
func (m *InventoryMetrics) ObserveApply(txType, outcome string, elapsed time.Duration) {
	m.applyTotal.WithLabelValues(txType, outcome).Inc()
	m.applyDuration.WithLabelValues(txType).Observe(elapsed.Seconds())
}

// IncThresholdWarning cuenta una alerta de umbral.
func (m *InventoryMetrics) IncThresholdWarning(kind string) {
	m.thresholdWarnings.WithLabelValues(kind).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas Prometheus del motor de existencias, expuestas en /metrics.
var (
	// MovementsApplied movimientos aplicados al stock materializado, por tipo.
	MovementsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acopio_movements_applied_total",
		Help: "Movimientos del libro aplicados al stock materializado, por tipo.",
	}, []string{"kind"})

	// MovementsRejected envíos rechazados en validación o por duplicado.
	MovementsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acopio_movements_rejected_total",
		Help: "Envíos de movimiento rechazados, por motivo.",
	}, []string{"reason"})

	// RebuildRuns rebuilds completos ejecutados (acción de operador).
	RebuildRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acopio_stock_rebuilds_total",
		Help: "Reconstrucciones completas de la tabla de stock.",
	})

	// DriftEntries claves con deriva detectadas por el último verify.
	DriftEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "acopio_stock_drift_entries",
		Help: "Claves con deriva entre libro y stock materializado en la última verificación.",
	})
)

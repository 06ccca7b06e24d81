// Package metrics provides Prometheus metrics for the geometry core.
package metrics

import (
	"strings"
	"time"

	"github.com/chazu/aerogeom/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Configuration metrics
	ConfigurationsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aerogeom_configurations_open",
			Help: "Number of open configuration handles",
		},
	)

	ConfigurationsOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerogeom_configurations_opened_total",
			Help: "Total number of open attempts",
		},
		[]string{"status"},
	)

	// Query metrics
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerogeom_operations_total",
			Help: "Total number of handle operations by result",
		},
		[]string{"op", "status"},
	)

	// Export metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerogeom_exports_total",
			Help: "Total number of exports by format and result",
		},
		[]string{"format", "status"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aerogeom_export_duration_seconds",
			Help:    "Time taken to write an export file",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"format"},
	)

	// DSL metrics
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerogeom_evaluations_total",
			Help: "Total number of DSL evaluations by result",
		},
		[]string{"status"},
	)
)

// statusLabel is the label value for err: "ok" or the kind name with
// spaces replaced.
func statusLabel(err error) string {
	k := status.KindOf(err)
	if k == status.OK {
		return "ok"
	}
	return strings.ReplaceAll(k.String(), " ", "_")
}

// RecordOpen records an open attempt. Successful opens raise the gauge.
func RecordOpen(err error) {
	ConfigurationsOpenedTotal.WithLabelValues(statusLabel(err)).Inc()
	if err == nil {
		ConfigurationsOpen.Inc()
	}
}

// RecordClose lowers the open configurations gauge.
func RecordClose() {
	ConfigurationsOpen.Dec()
}

// RecordOperation counts one handle operation.
func RecordOperation(op string, err error) {
	OperationsTotal.WithLabelValues(op, statusLabel(err)).Inc()
}

// RecordExport records an export attempt and its duration.
func RecordExport(format string, err error, duration time.Duration) {
	ExportsTotal.WithLabelValues(format, statusLabel(err)).Inc()
	ExportDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// RecordEvaluation counts one DSL evaluation.
func RecordEvaluation(err error) {
	EvaluationsTotal.WithLabelValues(statusLabel(err)).Inc()
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Package metrics exposes Prometheus counters for record codec and archive
// operations.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	DirectionRead  = "read"
	DirectionWrite = "write"
)

// Metrics holds all Prometheus metrics for record processing
type Metrics struct {
	registry *prometheus.Registry

	// Record codec metrics
	recordsTotal *prometheus.CounterVec
	recordBytes  *prometheus.CounterVec

	// Archive metrics
	archiveOperationsTotal   *prometheus.CounterVec
	archiveOperationDuration *prometheus.HistogramVec
}

// NewMetrics creates all metrics on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bparse_records_total",
				Help: "Total number of records read or written",
			},
			[]string{"schema", "direction", "status"},
		),

		recordBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bparse_record_bytes_total",
				Help: "Total number of encoded record bytes read or written",
			},
			[]string{"schema", "direction"},
		),

		archiveOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bparse_archive_operations_total",
				Help: "Total number of archive operations",
			},
			[]string{"operation", "status"},
		),

		archiveOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bparse_archive_operation_duration_seconds",
				Help:    "Archive operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Registry returns the registry the metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRecord records one record read or written through a schema
func (m *Metrics) RecordRecord(schema, direction string, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.recordsTotal.WithLabelValues(schema, direction, status).Inc()
}

// RecordBytes adds n encoded bytes read or written through a schema
func (m *Metrics) RecordBytes(schema, direction string, n int64) {
	m.recordBytes.WithLabelValues(schema, direction).Add(float64(n))
}

// RecordArchiveOperation records an archive operation
func (m *Metrics) RecordArchiveOperation(operation string, success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	m.archiveOperationsTotal.WithLabelValues(operation, status).Inc()
	m.archiveOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// WriteFile writes all metrics to path in the Prometheus text format
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

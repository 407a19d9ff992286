// Package metrics collects store activity into a Prometheus registry.
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
)

// Metrics holds all Prometheus metrics for the stores. It satisfies
// store.Observer.
type Metrics struct {
	registry *prometheus.Registry

	// Store operation metrics
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	// Snapshot metrics
	records       *prometheus.GaugeVec
	snapshotBytes *prometheus.GaugeVec

	// Login metrics
	authAttemptsTotal *prometheus.CounterVec
}

// NewMetrics creates all metrics on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockroom_store_operations_total",
				Help: "Total number of store operations",
			},
			[]string{"store", "operation", "status"},
		),

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockroom_store_operation_duration_seconds",
				Help:    "Store operation duration in seconds, including the snapshot write",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"store", "operation"},
		),

		records: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockroom_store_records",
				Help: "Number of records held by a store",
			},
			[]string{"store"},
		),

		snapshotBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockroom_snapshot_bytes",
				Help: "Size of the last snapshot written by a store",
			},
			[]string{"store"},
		),

		authAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockroom_auth_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOperation records a store operation
func (m *Metrics) ObserveOperation(store, operation string, err error, elapsed time.Duration) {
	m.operationsTotal.WithLabelValues(store, operation, status(err == nil)).Inc()
	m.operationDuration.WithLabelValues(store, operation).Observe(elapsed.Seconds())
}

// ObserveRecords sets the record count of a store
func (m *Metrics) ObserveRecords(store string, count int) {
	m.records.WithLabelValues(store).Set(float64(count))
}

// ObserveSnapshot sets the size of the last snapshot written by a store
func (m *Metrics) ObserveSnapshot(store string, bytes int64) {
	m.snapshotBytes.WithLabelValues(store).Set(float64(bytes))
}

// ObserveLogin records a login attempt
func (m *Metrics) ObserveLogin(success bool) {
	m.authAttemptsTotal.WithLabelValues(status(success)).Inc()
}

// WriteTextfile writes the registry to path in the node exporter textfile
// collector format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func status(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

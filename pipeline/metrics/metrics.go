// Package metrics provides Prometheus metrics for export runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Export metrics
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetexport_items_total",
			Help: "Total number of exported items by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	exportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetexport_item_duration_seconds",
			Help:    "Time to convert and write one item",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	bytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assetexport_bytes_written_total",
			Help: "Total bytes written to exported files",
		},
	)

	// Asset table metrics
	tableEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetexport_table_entries_total",
			Help: "Catalog entries processed by layout and outcome",
		},
		[]string{"layout", "outcome"},
	)

	assetIndexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assetexport_asset_index_entries",
			Help: "Number of entries in the master asset index",
		},
	)

	// Mirror metrics
	mirrorOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetexport_mirror_operation_duration_seconds",
			Help:    "S3 mirror operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	mirrorOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetexport_mirror_operations_total",
			Help: "Total S3 mirror operations",
		},
		[]string{"operation", "status"},
	)
)

// RecordExport records one dispatched item. status is "success" or the
// failure reason.
func RecordExport(kind, status string, duration time.Duration) {
	exportsTotal.WithLabelValues(kind, status).Inc()
	exportDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// AddBytesWritten records bytes committed to an output file.
func AddBytesWritten(n int64) {
	bytesWritten.Add(float64(n))
}

// RecordTableEntry records one catalog entry outcome: exported, skipped or
// failed.
func RecordTableEntry(layout, outcome string) {
	tableEntriesTotal.WithLabelValues(layout, outcome).Inc()
}

// SetAssetIndexSize sets the size of the master asset index.
func SetAssetIndexSize(n int) {
	assetIndexSize.Set(float64(n))
}

// RecordMirrorOperation records an S3 mirror operation.
func RecordMirrorOperation(operation string, duration time.Duration, success bool) {
	mirrorOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	mirrorOperationsTotal.WithLabelValues(operation, status).Inc()
}

// WriteTextfile dumps every registered metric in the text exposition format,
// for pickup by a node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

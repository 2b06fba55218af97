package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Project-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video",
			Subsystem: "project_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "video",
			Subsystem: "project_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video",
			Subsystem: "project_api",
			Name:      "uploads_total",
			Help:      "Total video uploads",
		},
		[]string{"codec", "status"},
	)

	// Upload bytes counter
	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video",
			Subsystem: "project_api",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"codec"},
	)

	// Storage operations counter
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video",
			Subsystem: "project_api",
			Name:      "storage_operations_total",
			Help:      "Total asset storage operations",
		},
		[]string{"operation", "status"},
	)

	// Job dispatch counter
	JobsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video",
			Subsystem: "project_api",
			Name:      "jobs_dispatched_total",
			Help:      "Total background jobs dispatched",
		},
		[]string{"kind", "status"},
	)

	// Busy responses per processing flag
	BusyResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video",
			Subsystem: "project_api",
			Name:      "busy_responses_total",
			Help:      "Requests refused because a processing flag was held",
		},
		[]string{"endpoint"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a video upload
func RecordUpload(codec, status string, bytes int64) {
	UploadsTotal.WithLabelValues(codec, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(codec).Add(float64(bytes))
	}
}

// RecordStorageOperation records an asset storage operation
func RecordStorageOperation(operation, status string) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordJobDispatch records a background job dispatch
func RecordJobDispatch(kind, status string) {
	JobsDispatchedTotal.WithLabelValues(kind, status).Inc()
}

// RecordBusyResponse records a request refused while a job held the flag
func RecordBusyResponse(endpoint string) {
	BusyResponsesTotal.WithLabelValues(endpoint).Inc()
}

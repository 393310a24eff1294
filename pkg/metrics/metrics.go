package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the dedicated registry served at /api/metrics. A dedicated
// registry keeps default Go collectors out of the scrape and lets tests
// create the packages without duplicate-registration panics.
var Registry = prometheus.NewRegistry()

// Custom histogram buckets for API response times ranging from milliseconds
// to 30+ seconds. Covers both local Postgres calls and slow object-storage
// uploads of 10 MiB attachments.
var CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

var (
	// HTTP Metrics
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Metrics
	DBRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Object Storage Metrics
	StorageRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	// Business Metrics
	ApplicationSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_application_submissions_total",
			Help: "Total number of application submission attempts",
		},
		[]string{"status"},
	)

	DraftSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_draft_saves_total",
			Help: "Total number of wizard draft autosaves",
		},
		[]string{"status"},
	)

	DraftRestores = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_draft_restores_total",
			Help: "Total number of wizard draft restore attempts",
		},
		[]string{"outcome"}, // restored, expired, empty
	)

	FileUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_file_uploads_total",
			Help: "Total number of attachment staging attempts",
		},
		[]string{"status"},
	)

	AdminNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_admin_notifications_total",
			Help: "Total number of admin channel notifications",
		},
		[]string{"status"},
	)

	// Infrastructure Metrics
	GoRoutines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(
		HTTPRequestDuration,
		HTTPRequestTotal,
		ActiveRequests,
		DBRequestDuration,
		DBRequestTotal,
		StorageRequestDuration,
		StorageRequestTotal,
		CacheHits,
		CacheMisses,
		ApplicationSubmissions,
		DraftSaves,
		DraftRestores,
		FileUploads,
		AdminNotifications,
		GoRoutines,
		HeapAlloc,
	)
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation in seconds
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

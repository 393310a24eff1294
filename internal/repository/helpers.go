package repository

import (
	"github.com/lexpravo/intake-api/pkg/metrics"
)

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.DBRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.DBRequestTotal.WithLabelValues(operation, status).Inc()
}

// nilIfEmpty converts empty strings to nil for nullable columns
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nilIfZero converts zero int64 values to nil for nullable columns
func nilIfZero(n int64) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

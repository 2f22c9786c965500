// Package metrics exposes Prometheus collectors for Graph API traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "whatsapp_catalog"

var (
	graphRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_requests_total",
			Help:      "Graph API attempts by method and status class.",
		},
		[]string{"method", "status"},
	)
	graphRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_request_duration_seconds",
			Help:      "Duration of single Graph API attempts.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "status"},
	)
	graphRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_retries_total",
			Help:      "Graph API attempts beyond the first one.",
		},
	)
	rateLimitWaitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_waits_total",
			Help:      "Times a request waited for the rate window to reset.",
		},
	)
	rateLimitWaitSeconds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_wait_seconds",
			Help:      "Total time spent waiting for the rate window.",
		},
	)
	batchItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Batch records by outcome.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		graphRequestsTotal,
		graphRequestDuration,
		graphRetriesTotal,
		rateLimitWaitsTotal,
		rateLimitWaitSeconds,
		batchItemsTotal,
	)
}

// RecordGraphRequest records one attempt. A zero status means no response.
func RecordGraphRequest(method string, statusCode int, duration time.Duration) {
	status := ClassifyStatus(statusCode)
	graphRequestsTotal.WithLabelValues(method, status).Inc()
	graphRequestDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// RecordRetries adds n retries.
func RecordRetries(n int) {
	if n > 0 {
		graphRetriesTotal.Add(float64(n))
	}
}

// RecordRateLimitWait records one blocking wait on the rate window.
func RecordRateLimitWait(d time.Duration) {
	rateLimitWaitsTotal.Inc()
	if d > 0 {
		rateLimitWaitSeconds.Add(d.Seconds())
	}
}

// RecordBatchItem records the outcome of one batch record.
func RecordBatchItem(success bool) {
	if success {
		batchItemsTotal.WithLabelValues("success").Inc()
		return
	}
	batchItemsTotal.WithLabelValues("failure").Inc()
}

// ClassifyStatus maps a status code to its class label.
func ClassifyStatus(statusCode int) string {
	switch {
	case statusCode == 0:
		return "error"
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode == http.StatusTooManyRequests:
		return "429"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return strconv.Itoa(statusCode)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is an explicitly constructed sink, built once in main and injected
// into the services that record against it. Lifecycle: NewMetrics at process
// start, Handler mounted on /metrics for scraping.
type Metrics struct {
	registry *prometheus.Registry

	ReqCount    *prometheus.CounterVec
	ReqDuration *prometheus.HistogramVec

	LedgerWrites      *prometheus.CounterVec
	BatchRows         *prometheus.CounterVec
	CacheInvalidation prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ReqCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "app_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		ReqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "app_request_duration_seconds",
				Help: "Request duration seconds",
			},
			[]string{"method", "path"},
		),
		LedgerWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "app_ledger_writes_total",
				Help: "Consumption ledger writes by outcome",
			},
			[]string{"outcome"}, // created|accumulated|deleted
		),
		BatchRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "app_batch_rows_total",
				Help: "Ingestion batch rows by disposition",
			},
			[]string{"disposition"}, // accepted|rejected
		),
		CacheInvalidation: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "app_catalog_cache_invalidations_total",
				Help: "Catalog cache invalidations triggered by writes",
			},
		),
	}

	m.registry.MustRegister(
		m.ReqCount,
		m.ReqDuration,
		m.LedgerWrites,
		m.BatchRows,
		m.CacheInvalidation,
	)
	return m
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.ReqCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.ReqDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler exposes the sink's registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

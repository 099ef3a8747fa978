package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts processed uploads by source (upload, import, drive) and result.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_uploads_total",
			Help: "Total number of processed sales files",
		},
		[]string{"source", "result"},
	)

	// RowsTotal counts ingested rows by outcome (accepted, rejected).
	RowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_rows_total",
			Help: "Total number of sales rows seen by the ingestion pipeline",
		},
		[]string{"outcome"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// CacheLookups counts dashboard and stats cache lookups.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_cache_lookups_total",
			Help: "Cache lookups by key kind and result",
		},
		[]string{"kind", "result"},
	)
)

// ObserveIngest records one finished file.
func ObserveIngest(source string, accepted, rejected int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	UploadsTotal.WithLabelValues(source, result).Inc()
	RowsTotal.WithLabelValues("accepted").Add(float64(accepted))
	RowsTotal.WithLabelValues("rejected").Add(float64(rejected))
}

// ObserveCache records one cache lookup.
func ObserveCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(kind, result).Inc()
}

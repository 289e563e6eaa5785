package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Block ingestion metrics
	BlocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eegingest_blocks_total",
			Help: "Total number of upload blocks processed",
		},
		[]string{"status"},
	)

	SamplesWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eegingest_samples_written_total",
			Help: "Total number of samples durably written",
		},
	)

	PayloadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eegingest_payload_bytes_total",
			Help: "Total compressed payload bytes received",
		},
	)

	TruncatedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eegingest_truncated_bytes_total",
			Help: "Total trailing bytes dropped from partial device records",
		},
	)

	// Stage duration metrics
	DecompressDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eegingest_decompress_duration_seconds",
			Help:    "Duration of payload decompression in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	StorageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eegingest_storage_duration_seconds",
			Help:    "Duration of bulk sample writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Notification metrics
	NotifyFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eegingest_notify_failures_total",
			Help: "Total block notifications that failed to publish",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eegingest_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"device"},
	)
)

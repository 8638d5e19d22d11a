package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Ledger
	PostingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_postings_total",
			Help: "Completed postings by transaction type",
		},
		[]string{"type"},
	)
	PostingsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_postings_failed_total",
			Help: "Rejected postings by reason",
		},
		[]string{"reason"},
	)
	GuardTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_guard_timeouts_total",
			Help: "Consistency guard acquisitions that timed out",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestLatency)
	prometheus.MustRegister(PostingsTotal)
	prometheus.MustRegister(PostingsFailed)
	prometheus.MustRegister(GuardTimeouts)
	prometheus.MustRegister(WorkerQueueDepth)
}

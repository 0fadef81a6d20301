package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astraldraw",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "astraldraw",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	ledgerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astraldraw",
			Subsystem: "ledger",
			Name:      "calls_total",
			Help:      "Total number of ledger bridge calls.",
		},
		[]string{"operation", "success"},
	)

	drawsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "astraldraw",
			Subsystem: "draws",
			Name:      "processed_total",
			Help:      "Total number of draws resolved.",
		},
	)

	intentsReconciled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astraldraw",
			Subsystem: "reconciler",
			Name:      "intents_total",
			Help:      "Total number of stale ledger intents resolved.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		ledgerCalls,
		drawsProcessed,
		intentsReconciled,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered collectors
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled HTTP request
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveLedgerCall records one ledger bridge call
func ObserveLedgerCall(operation string, success bool) {
	ledgerCalls.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}

// DrawProcessed records one resolved draw
func DrawProcessed() {
	drawsProcessed.Inc()
}

// IntentReconciled records one stale intent resolved by the reconciler
func IntentReconciled(kind string) {
	intentsReconciled.WithLabelValues(kind).Inc()
}

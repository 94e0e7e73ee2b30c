package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photohandoff",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "photohandoff",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	deliveryOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photohandoff",
			Subsystem: "delivery",
			Name:      "operations_total",
			Help:      "Transition delivery registry operations by kind and result.",
		},
		[]string{"op", "result"},
	)
	deliveryPending = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "photohandoff",
			Subsystem: "delivery",
			Name:      "pending_envelopes",
			Help:      "Envelopes stored and not yet consumed or removed, per registry.",
		},
		[]string{"registry"},
	)
	recoveryOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photohandoff",
			Subsystem: "recovery",
			Name:      "outcomes_total",
			Help:      "Per-item reconstruction outcomes.",
		},
		[]string{"status", "reason"},
	)
	controllerResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photohandoff",
			Subsystem: "viewer",
			Name:      "resolutions_total",
			Help:      "Delivery controller resolutions by source.",
		},
		[]string{"source"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			deliveryOps,
			deliveryPending,
			recoveryOutcomes,
			controllerResolutions,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDelivery counts one registry operation and publishes that registry's
// pending count.
func RecordDelivery(registry, op, result string, pending int) {
	RegisterMetrics()
	deliveryOps.WithLabelValues(op, result).Inc()
	deliveryPending.WithLabelValues(registry).Set(float64(pending))
}

func RecordRecovery(status, reason string) {
	RegisterMetrics()
	if reason == "" {
		reason = "none"
	}
	recoveryOutcomes.WithLabelValues(status, reason).Inc()
}

func RecordResolution(source string) {
	RegisterMetrics()
	controllerResolutions.WithLabelValues(source).Inc()
}

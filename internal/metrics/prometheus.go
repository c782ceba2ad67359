package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus collectors mirroring the atomic counters above
var (
	// goalWritesTotal counts store writes by operation and result.
	// Labels:
	//   - op: "create", "update" or "delete"
	//   - status: "success" or "failed"
	goalWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journey_goal_writes_total",
			Help: "Total number of goal writes sent to the goal store",
		},
		[]string{"op", "status"},
	)

	// goalWriteDuration observes store write latency.
	// Buckets: 10ms .. 10s
	goalWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journey_goal_write_duration_seconds",
			Help:    "Duration of goal store writes in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	// batchGoalsTotal counts goals per batch outcome.
	// Labels:
	//   - outcome: "created", "updated", "skipped" or "failed"
	batchGoalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journey_batch_goals_total",
			Help: "Goals processed by save batches, by outcome",
		},
		[]string{"outcome"},
	)

	// httpRequestDuration observes request latency per route.
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journey_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(goalWritesTotal)
	prometheus.MustRegister(goalWriteDuration)
	prometheus.MustRegister(batchGoalsTotal)
	prometheus.MustRegister(httpRequestDuration)
}

// Handler exposes the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func observeGoalWrite(op string, success bool, latencyMs int64) {
	goalWritesTotal.WithLabelValues(op, statusLabel(success)).Inc()
	goalWriteDuration.WithLabelValues(op).Observe(float64(latencyMs) / 1000)
}

func recordDelete(success bool) {
	goalWritesTotal.WithLabelValues("delete", statusLabel(success)).Inc()
}

func recordBatchOutcome(created, updated, skipped, failed int) {
	batchGoalsTotal.WithLabelValues("created").Add(float64(created))
	batchGoalsTotal.WithLabelValues("updated").Add(float64(updated))
	batchGoalsTotal.WithLabelValues("skipped").Add(float64(skipped))
	batchGoalsTotal.WithLabelValues("failed").Add(float64(failed))
}

func observeRequest(method, path string, statusCode int, latencyMs int64) {
	httpRequestDuration.WithLabelValues(method, path, strconv.Itoa(statusCode)).Observe(float64(latencyMs) / 1000)
}

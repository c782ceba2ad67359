package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBatch(t *testing.T) {
	batchGoalsTotal.Reset()
	m := &Metrics{EndpointMetrics: map[string]*EndpointMetrics{}}

	m.RecordBatch(2, 1, 3, 0)
	m.RecordBatch(0, 0, 1, 1)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Batches.Processed)
	assert.Equal(t, int64(1), snap.Batches.Failed)
	assert.Equal(t, int64(2), snap.Goals.Created)
	assert.Equal(t, int64(4), snap.Goals.Skipped)
	assert.Equal(t, int64(1), snap.Goals.Errors)

	assert.Equal(t, 4.0, testutil.ToFloat64(batchGoalsTotal.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(batchGoalsTotal.WithLabelValues("failed")))
}

func TestIncrementGoalWrite(t *testing.T) {
	goalWritesTotal.Reset()
	m := &Metrics{}

	m.IncrementGoalWrite("create", true, 40)
	m.IncrementGoalWrite("update", false, 20)
	m.IncrementGoalDeleted(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(goalWritesTotal.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(goalWritesTotal.WithLabelValues("update", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(goalWritesTotal.WithLabelValues("delete", "success")))
	assert.Equal(t, 30.0, m.Snapshot().Goals.AvgLatencyMs)
}

func TestTrackEndpoint(t *testing.T) {
	m := &Metrics{}
	m.TrackEndpoint("/api/v1/goals", "GET", 200, 10)
	m.TrackEndpoint("/api/v1/goals", "GET", 500, 30)

	em := m.Snapshot().Endpoints["GET /api/v1/goals"]
	assert.Equal(t, int64(2), em.Requests)
	assert.Equal(t, 50.0, em.ErrorRate)
	assert.Equal(t, 20.0, em.AvgLatencyMs)
}

func TestPrometheusHandler(t *testing.T) {
	Get().IncrementGoalWrite("create", true, 5)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/prometheus", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "journey_goal_writes_total"))
}

func TestDetermineOverallStatus(t *testing.T) {
	assert.Equal(t, "healthy", DetermineOverallStatus(map[string]HealthStatus{"a": {Status: "healthy"}}))
	assert.Equal(t, "degraded", DetermineOverallStatus(map[string]HealthStatus{"a": {Status: "healthy"}, "b": {Status: "degraded"}}))
	assert.Equal(t, "unhealthy", DetermineOverallStatus(map[string]HealthStatus{"a": {Status: "degraded"}, "b": {Status: "unhealthy"}}))
	assert.Equal(t, "unhealthy", CheckDatabaseHealth(nil).Status)
}

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/metrics"
	"github.com/cleberrangel/journey-goals-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// maxWSConnections is the connection count above which the hub reports degraded
const maxWSConnections = 500

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	db        *sql.DB
	ping      func(ctx context.Context) error
	wsHub     *websocket.Hub
	version   string
	startTime time.Time
}

// NewHealthHandler creates a health handler for the Postgres backend
func NewHealthHandler(db *sql.DB, wsHub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		wsHub:     wsHub,
		version:   version,
		startTime: time.Now(),
	}
}

// NewRemoteHealthHandler creates a health handler for the remote goal API backend
func NewRemoteHealthHandler(ping func(ctx context.Context) error, wsHub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		ping:      ping,
		wsHub:     wsHub,
		version:   version,
		startTime: time.Now(),
	}
}

// LivenessCheck returns basic liveness status
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck returns readiness status of the goal store
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.respond(c, map[string]metrics.HealthStatus{
		"storage": h.checkStorage(),
		"memory":  metrics.CheckMemoryHealth(512),
	})
}

// DetailedHealthCheck returns comprehensive health information
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"storage": h.checkStorage(),
		"memory":  metrics.CheckMemoryHealth(512),
	}
	if h.wsHub != nil {
		components["websocket"] = h.checkWebSocketHealth()
	}
	components["goal_writes"] = h.checkGoalWriteHealth()

	h.respond(c, components)
}

func (h *HealthHandler) respond(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	})
}

func (h *HealthHandler) checkStorage() metrics.HealthStatus {
	if h.ping != nil {
		return metrics.CheckPingHealth(h.ping)
	}
	return metrics.CheckDatabaseHealth(h.db)
}

// checkWebSocketHealth checks WebSocket hub health
func (h *HealthHandler) checkWebSocketHealth() metrics.HealthStatus {
	if h.wsHub.GetConnectionCount() > maxWSConnections {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "WebSocket connections near limit",
		}
	}
	return metrics.HealthStatus{Status: "healthy"}
}

// checkGoalWriteHealth degrades when most goal writes are failing
func (h *HealthHandler) checkGoalWriteHealth() metrics.HealthStatus {
	snapshot := metrics.Get().Snapshot()

	attempted := snapshot.Goals.Created + snapshot.Goals.Updated + snapshot.Goals.Deleted + snapshot.Goals.Errors
	if attempted > 0 {
		failureRate := float64(snapshot.Goals.Errors) / float64(attempted) * 100
		if failureRate > 50 {
			return metrics.HealthStatus{
				Status:  "degraded",
				Message: "High goal write failure rate",
			}
		}
	}
	return metrics.HealthStatus{Status: "healthy"}
}

// GetMetrics returns application metrics
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Get().Snapshot())
}

// GetMetricsSummary returns a summary of key metrics
// @Router /metrics/summary [get]
func (h *HealthHandler) GetMetricsSummary(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()

	requestSuccessRate := float64(0)
	if snapshot.Requests.Total > 0 {
		requestSuccessRate = float64(snapshot.Requests.Successful) / float64(snapshot.Requests.Total) * 100
	}

	cacheHitRate := float64(0)
	if snapshot.Dashboards.Served > 0 {
		cacheHitRate = float64(snapshot.Dashboards.CacheHits) / float64(snapshot.Dashboards.Served) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": snapshot.UptimeSeconds,
		"version":        h.version,
		"requests": gin.H{
			"total":        snapshot.Requests.Total,
			"success_rate": requestSuccessRate,
			"avg_latency":  snapshot.Requests.AvgLatencyMs,
		},
		"goals": gin.H{
			"batches":              snapshot.Batches.Processed,
			"created":              snapshot.Goals.Created,
			"updated":              snapshot.Goals.Updated,
			"skipped":              snapshot.Goals.Skipped,
			"errors":               snapshot.Goals.Errors,
			"avg_write_latency_ms": snapshot.Goals.AvgLatencyMs,
		},
		"dashboards": gin.H{
			"served":         snapshot.Dashboards.Served,
			"cache_hit_rate": cacheHitRate,
		},
		"websocket": gin.H{
			"connections": snapshot.WebSocket.Connections,
		},
		"system": gin.H{
			"goroutines":  snapshot.System.Goroutines,
			"heap_mb":     snapshot.System.HeapAllocMB,
			"heap_use_mb": snapshot.System.HeapInUseMB,
		},
	})
}

// GetEndpointMetrics returns metrics for specific endpoints
// @Router /metrics/endpoints [get]
func (h *HealthHandler) GetEndpointMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"endpoints": metrics.Get().Snapshot().Endpoints,
	})
}

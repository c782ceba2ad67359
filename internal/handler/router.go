package handler

import (
	"github.com/cleberrangel/journey-goals-api/internal/metrics"
	"github.com/cleberrangel/journey-goals-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers agrupa os handlers registrados no router
type Handlers struct {
	Goals     *GoalHandler
	Dashboard *DashboardHandler
	Snapshots *SnapshotHandler
	Reports   *ReportHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler
}

// NewRouter monta as rotas públicas e o grupo /api/v1 protegido por token
func NewRouter(h Handlers, auth middleware.AuthConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())

	if h.Health != nil {
		r.GET("/health", h.Health.DetailedHealthCheck)
		r.GET("/health/live", h.Health.LivenessCheck)
		r.GET("/health/ready", h.Health.ReadinessCheck)
		r.GET("/metrics", h.Health.GetMetrics)
		r.GET("/metrics/summary", h.Health.GetMetricsSummary)
		r.GET("/metrics/endpoints", h.Health.GetEndpointMetrics)
	}
	r.GET("/metrics/prometheus", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.BearerAuth(auth))
	api.Use(middleware.AuditMiddleware("/api/v1/goals", "/api/v1/snapshots"))
	{
		api.GET("/goals", h.Goals.List)
		api.POST("/goals/save", h.Goals.Save)
		api.POST("/goals/changed", h.Goals.Changed)
		api.DELETE("/goals/:id", h.Goals.Delete)

		api.GET("/dashboard", h.Dashboard.Get)
		api.POST("/snapshots", h.Snapshots.Record)
		api.GET("/reports/weekly", h.Reports.Weekly)
	}

	if h.WebSocket != nil {
		wsAuth := auth
		wsAuth.AllowQuery = true

		ws := r.Group("/api/v1")
		ws.Use(middleware.BearerAuth(wsAuth))
		ws.GET("/ws", h.WebSocket.HandleConnection)
		ws.GET("/ws/connections", h.WebSocket.GetUserConnections)
	}

	return r
}

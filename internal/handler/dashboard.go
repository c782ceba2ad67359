package handler

import (
	"net/http"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/cleberrangel/journey-goals-api/internal/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler expõe o resumo analítico da semana
type DashboardHandler struct {
	dashboard *service.DashboardService
	now       func() time.Time
}

// NewDashboardHandler cria o handler de dashboard
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, now: time.Now}
}

// Get calcula o dashboard. today (YYYY-MM-DD) simula o dia atual; sem ele
// vale o relógio do servidor.
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	now := h.now()

	at := now
	if raw := c.Query("today"); raw != "" {
		day, err := time.ParseInLocation(model.WeekLayout, raw, now.Location())
		if err != nil {
			badRequest(c, "parâmetro today inválido", err)
			return
		}
		at = day.Add(12 * time.Hour)
	}

	week, err := model.ParseWeek(c.Query("week"), at)
	if err != nil {
		badRequest(c, "parâmetro week inválido", err)
		return
	}

	summary, err := h.dashboard.Summary(c.Request.Context(), c.GetString("user_id"), week, at)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    summary,
		Meta: &model.Meta{
			Week:       summary.Week,
			TotalGoals: summary.TotalGoals,
			TotalTasks: summary.TotalTasks,
		},
	})
}

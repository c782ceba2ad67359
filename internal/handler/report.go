package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/cleberrangel/journey-goals-api/internal/service"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler manipula requisições de relatório
type ReportHandler struct {
	reportService *service.ReportService
	now           func() time.Time
}

// NewReportHandler cria um novo handler de relatórios
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, now: time.Now}
}

// Weekly gera o xlsx da semana
// @Summary      Relatório semanal
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        week query string false "Semana (YYYY-MM-DD)"
// @Success      200 {file} binary
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/v1/reports/weekly [get]
func (h *ReportHandler) Weekly(c *gin.Context) {
	week, err := model.ParseWeek(c.Query("week"), h.now())
	if err != nil {
		badRequest(c, "parâmetro week inválido", err)
		return
	}

	report, err := h.reportService.WeeklyReport(c.Request.Context(), c.GetString("user_id"), week)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.Filename))
	c.Header("X-Total-Goals", fmt.Sprintf("%d", report.TotalGoals))
	c.Header("X-Total-Tasks", fmt.Sprintf("%d", report.TotalTasks))
	c.Data(http.StatusOK, xlsxContentType, report.Content.Bytes())
}

package handler

import (
	"net/http"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/cleberrangel/journey-goals-api/internal/service"
	"github.com/gin-gonic/gin"
)

// SnapshotHandler registra o total diário de tasks concluídas
type SnapshotHandler struct {
	snapshots *service.SnapshotService
}

// NewSnapshotHandler cria o handler de snapshots
func NewSnapshotHandler(snapshots *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots}
}

// Record grava ou substitui o snapshot do dia
// @Router /api/v1/snapshots [post]
func (h *SnapshotHandler) Record(c *gin.Context) {
	var req model.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	date, err := time.ParseInLocation(model.WeekLayout, req.Date, time.Local)
	if err != nil {
		badRequest(c, "campo date inválido", err)
		return
	}

	snapshot := model.DailySnapshot{Date: date, TasksCompleted: req.TasksCompleted}
	if err := h.snapshots.Record(c.Request.Context(), c.GetString("user_id"), snapshot); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.Response{Success: true, Data: snapshot})
}

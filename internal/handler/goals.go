package handler

import (
	"net/http"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/middleware"
	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/cleberrangel/journey-goals-api/internal/service"
	"github.com/gin-gonic/gin"
)

// GoalHandler expõe o carregamento e o salvamento das metas semanais
type GoalHandler struct {
	goals *service.GoalService
	now   func() time.Time
}

// NewGoalHandler cria o handler de metas
func NewGoalHandler(goals *service.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals, now: time.Now}
}

// List carrega as metas da semana e redefine o estado salvo do usuário
// @Router /api/v1/goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	week, err := model.ParseWeek(c.Query("week"), h.now())
	if err != nil {
		badRequest(c, "parâmetro week inválido", err)
		return
	}

	goals, err := h.goals.Load(c.Request.Context(), c.GetString("user_id"), week)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    goals,
		Meta: &model.Meta{
			Week:       model.FormatWeek(week),
			TotalGoals: len(goals),
			TotalTasks: model.CountTasks(goals),
		},
	})
}

// Save grava rascunhos e metas alteradas; metas sem alteração não são enviadas
// @Router /api/v1/goals/save [post]
func (h *GoalHandler) Save(c *gin.Context) {
	var req model.SaveGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	week, err := model.ParseWeek(req.Week, h.now())
	if err != nil {
		badRequest(c, "campo week inválido", err)
		return
	}

	middleware.SanitizeGoals(req.Goals)

	result, err := h.goals.Save(c.Request.Context(), c.GetString("user_id"), week, req.Goals)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := model.Response{
		Success: len(result.Result.Failed) == 0,
		Data:    result,
		Meta: &model.Meta{
			Week:       result.Week,
			TotalGoals: len(result.Goals),
			TotalTasks: model.CountTasks(result.Goals),
		},
	}
	for _, failure := range result.Result.Failed {
		resp.Errors = append(resp.Errors, failure.Error())
	}

	c.JSON(http.StatusOK, resp)
}

// Changed informa se a meta difere do último estado salvo
// @Router /api/v1/goals/changed [post]
func (h *GoalHandler) Changed(c *gin.Context) {
	var req model.ChangedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}
	goals := []model.Goal{req.Goal}
	middleware.SanitizeGoals(goals)

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    gin.H{"changed": h.goals.HasChanged(c.GetString("user_id"), goals[0])},
	})
}

// Delete remove a meta imediatamente
// @Router /api/v1/goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	goalID := c.Param("id")
	if err := h.goals.Delete(c.Request.Context(), c.GetString("user_id"), goalID); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Success: true})
}

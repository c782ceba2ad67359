package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/cleberrangel/journey-goals-api/internal/client"
	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/cleberrangel/journey-goals-api/internal/service"
	"github.com/gin-gonic/gin"
)

// handleError traduz erros de serviço para status HTTP
func handleError(c *gin.Context, err error) {
	status, msg := statusFor(err)

	log := logger.FromGin(c)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Erro ao processar requisição")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("Requisição rejeitada")
	}

	c.JSON(status, model.ErrorResponse{
		Success: false,
		Error:   msg,
		Details: err.Error(),
	})
}

func statusFor(err error) (int, string) {
	var statusErr *client.StatusError

	switch {
	case errors.Is(err, service.ErrMissingUser):
		return http.StatusBadRequest, "usuário não informado"
	case errors.Is(err, model.ErrInvalidGoal):
		return http.StatusBadRequest, "dados inválidos"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "meta não encontrada"
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit excedido, aguarde alguns segundos e tente novamente"
	case errors.Is(err, model.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout na requisição"
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusBadGateway, "API de metas recusou o token, verifique JOURNEY_API_TOKEN"
	case errors.Is(err, model.ErrInvalidResponse), errors.As(err, &statusErr):
		return http.StatusBadGateway, "falha na API de metas"
	default:
		return http.StatusInternalServerError, "erro interno"
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := model.ErrorResponse{Success: false, Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

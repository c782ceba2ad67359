package model

import "errors"

var (
	// ErrRateLimited indica que a API de metas retornou 429
	ErrRateLimited = errors.New("rate limit excedido na API de metas")

	// ErrUnauthorized indica token inválido
	ErrUnauthorized = errors.New("token da API de metas inválido ou expirado")

	// ErrNotFound indica meta inexistente
	ErrNotFound = errors.New("meta não encontrada")

	// ErrTimeout indica timeout na requisição
	ErrTimeout = errors.New("timeout na requisição para a API de metas")

	// ErrInvalidResponse indica resposta inválida da API
	ErrInvalidResponse = errors.New("resposta inválida da API de metas")

	// ErrInvalidGoal indica meta ou task que não passa na validação de escrita
	ErrInvalidGoal = errors.New("meta inválida")
)

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerMinute limite conservador para a API de metas
	DefaultRequestsPerMinute = 100

	// DefaultTimeout timeout padrão para requisições
	DefaultTimeout = 15 * time.Second

	// RetryMaxAttempts número máximo de tentativas por requisição
	RetryMaxAttempts = 3

	// RetryBackoff espera base entre retries; dobra a cada tentativa
	RetryBackoff = 2 * time.Second

	// UserHeader identifica o dono das metas na API remota
	UserHeader = "X-User-ID"
)

// Client é o cliente HTTP para a API remota de metas (/api/weeklyGoals, /api/home)
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	limiter      *rate.Limiter
	retryBackoff time.Duration
}

// Option customiza o cliente
type Option func(*Client)

// WithHTTPClient substitui o http.Client padrão
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetryBackoff altera a espera base entre tentativas
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) { c.retryBackoff = d }
}

// NewClient cria um novo cliente da API de metas
func NewClient(baseURL, token string, requestsPerMinute int, opts ...Option) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 10),
		retryBackoff: RetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// goalPayload é o corpo enviado em create/update
type goalPayload struct {
	Week  string       `json:"week"`
	Title string       `json:"title"`
	Tasks []model.Task `json:"tasks"`
}

// goalsEnvelope aceita tanto uma lista pura quanto {"goals": [...]}
type goalsEnvelope []model.Goal

func (e *goalsEnvelope) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var goals []model.Goal
		if err := json.Unmarshal(trimmed, &goals); err != nil {
			return err
		}
		*e = goals
		return nil
	}

	var wrapped struct {
		Goals []model.Goal `json:"goals"`
		Data  []model.Goal `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	if wrapped.Goals != nil {
		*e = wrapped.Goals
	} else {
		*e = wrapped.Data
	}
	return nil
}

// goalEnvelope aceita a meta pura ou {"goal": {...}}
type goalEnvelope model.Goal

func (e *goalEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Goal *model.Goal `json:"goal"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Goal != nil {
		*e = goalEnvelope(*wrapped.Goal)
		return nil
	}
	var goal model.Goal
	if err := json.Unmarshal(data, &goal); err != nil {
		return err
	}
	*e = goalEnvelope(goal)
	return nil
}

// snapshotWire é o formato de snapshot na API remota
type snapshotWire struct {
	Date           string `json:"date"`
	TasksCompleted int    `json:"tasksCompleted"`
}

// ListGoals busca as metas do usuário na semana
func (c *Client) ListGoals(ctx context.Context, userID string, week time.Time) ([]model.Goal, error) {
	q := url.Values{"week": {model.FormatWeek(week)}}

	var goals goalsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/weeklyGoals?"+q.Encode(), userID, nil, &goals); err != nil {
		return nil, fmt.Errorf("listar metas: %w", err)
	}
	if goals == nil {
		return []model.Goal{}, nil
	}
	return goals, nil
}

// CreateGoal cria a meta e devolve o id atribuído pela API
func (c *Client) CreateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error) {
	body := goalPayload{Week: model.FormatWeek(week), Title: goal.Title, Tasks: goal.Tasks}

	var created goalEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/weeklyGoals", userID, body, &created); err != nil {
		return model.Goal{}, fmt.Errorf("criar meta: %w", err)
	}
	if created.ID == "" {
		return model.Goal{}, fmt.Errorf("criar meta: %w: id ausente", model.ErrInvalidResponse)
	}

	goal.ID = created.ID
	if len(created.Tasks) > 0 && len(created.Tasks) == len(goal.Tasks) {
		goal.Tasks = created.Tasks
	}
	return goal, nil
}

// UpdateGoal grava título e tasks de uma meta existente
func (c *Client) UpdateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error) {
	body := goalPayload{Week: model.FormatWeek(week), Title: goal.Title, Tasks: goal.Tasks}

	path := "/api/weeklyGoals/" + url.PathEscape(goal.ID)
	if err := c.do(ctx, http.MethodPut, path, userID, body, nil); err != nil {
		return model.Goal{}, fmt.Errorf("atualizar meta %s: %w", goal.ID, err)
	}
	return goal, nil
}

// DeleteGoal remove uma meta
func (c *Client) DeleteGoal(ctx context.Context, userID, goalID string) error {
	path := "/api/weeklyGoals/" + url.PathEscape(goalID)
	if err := c.do(ctx, http.MethodDelete, path, userID, nil, nil); err != nil {
		return fmt.Errorf("remover meta %s: %w", goalID, err)
	}
	return nil
}

// ListSnapshots busca os snapshots diários entre from e to
func (c *Client) ListSnapshots(ctx context.Context, userID string, from, to time.Time) ([]model.DailySnapshot, error) {
	q := url.Values{
		"from": {from.Format(model.WeekLayout)},
		"to":   {to.Format(model.WeekLayout)},
	}

	var wire []snapshotWire
	if err := c.do(ctx, http.MethodGet, "/api/home/snapshots?"+q.Encode(), userID, nil, &wire); err != nil {
		return nil, fmt.Errorf("listar snapshots: %w", err)
	}

	snapshots := make([]model.DailySnapshot, 0, len(wire))
	for _, w := range wire {
		date, ok := parseSnapshotDate(w.Date, to.Location())
		if !ok {
			logger.Get(ctx).Warn().Str("date", w.Date).Msg("Snapshot com data inválida ignorado")
			continue
		}
		completed := w.TasksCompleted
		if completed < 0 {
			completed = 0
		}
		snapshots = append(snapshots, model.DailySnapshot{Date: date, TasksCompleted: completed})
	}
	return snapshots, nil
}

// RecordSnapshot envia o total do dia
func (c *Client) RecordSnapshot(ctx context.Context, userID string, snapshot model.DailySnapshot) error {
	body := snapshotWire{Date: snapshot.Date.Format(model.WeekLayout), TasksCompleted: snapshot.TasksCompleted}
	if err := c.do(ctx, http.MethodPost, "/api/home/snapshots", userID, body, nil); err != nil {
		return fmt.Errorf("gravar snapshot: %w", err)
	}
	return nil
}

// Ping verifica se a API remota responde
func (c *Client) Ping(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/api/home", "", nil, nil, "")
}

// parseSnapshotDate aceita "YYYY-MM-DD" ou RFC3339
func parseSnapshotDate(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation(model.WeekLayout, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return model.Midnight(t.In(loc)), true
	}
	return time.Time{}, false
}

// do executa a requisição com rate limit e retry com backoff exponencial
func (c *Client) do(ctx context.Context, method, path, userID string, body, result interface{}) error {
	// a mesma chave em todas as tentativas evita criar a meta duas vezes
	idempotencyKey := ""
	if method == http.MethodPost {
		idempotencyKey = uuid.NewString()
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 1; attempt <= RetryMaxAttempts; attempt++ {
		err := c.send(ctx, method, path, userID, body, result, idempotencyKey)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			return err
		}

		if attempt < RetryMaxAttempts {
			logger.Get(ctx).Warn().
				Str("method", method).
				Str("path", path).
				Int("attempt", attempt).
				Int("max_attempts", RetryMaxAttempts).
				Err(err).
				Dur("backoff", backoff).
				Msg("Tentativa falhou, aguardando retry")

			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

// retryable indica falhas transitórias; erros do cliente não são repetidos
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500
	}
	switch {
	case errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrInvalidGoal),
		errors.Is(err, model.ErrInvalidResponse):
		return false
	}
	return true
}

// StatusError é uma resposta HTTP inesperada da API remota
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// send executa uma única requisição HTTP
func (c *Client) send(ctx context.Context, method, path, userID string, body, result interface{}, idempotencyKey string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if userID != "" {
		req.Header.Set(UserHeader, userID)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return model.ErrTimeout
		}
		return fmt.Errorf("executar request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// OK, continua
	case resp.StatusCode == http.StatusTooManyRequests:
		return model.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return model.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return model.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s", model.ErrInvalidGoal, strings.TrimSpace(string(respBody)))
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidResponse, err)
	}
	return nil
}

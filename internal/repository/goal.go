package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/google/uuid"
)

// GoalRepository gerencia as metas semanais no banco
type GoalRepository struct {
	db *sql.DB
}

// NewGoalRepository cria um novo repositório de metas
func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// ListGoals retorna as metas do usuário na semana, na ordem de criação
func (r *GoalRepository) ListGoals(ctx context.Context, userID string, week time.Time) ([]model.Goal, error) {
	query := `
		SELECT id, title, tasks
		FROM weekly_goals
		WHERE user_id = $1 AND week_start = $2
		ORDER BY position, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID, model.FormatWeek(week))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar metas: %w", err)
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		var goal model.Goal
		var tasksJSON []byte
		if err := rows.Scan(&goal.ID, &goal.Title, &tasksJSON); err != nil {
			return nil, fmt.Errorf("erro ao ler meta: %w", err)
		}
		if err := decodeTasks(tasksJSON, &goal); err != nil {
			logger.Get(ctx).Warn().Err(err).Str("goal_id", goal.ID).Msg("Tasks inválidas no banco, usando lista vazia")
		}
		goals = append(goals, goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar metas: %w", err)
	}
	return goals, nil
}

// CreateGoal insere uma meta nova no fim da semana e devolve o id gerado
func (r *GoalRepository) CreateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error) {
	goal.Tasks = assignTaskIDs(goal.Tasks)
	tasksJSON, err := encodeTasks(goal.Tasks)
	if err != nil {
		return model.Goal{}, err
	}

	query := `
		INSERT INTO weekly_goals (id, user_id, week_start, title, tasks, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM weekly_goals WHERE user_id = $2 AND week_start = $3),
			NOW(), NOW())
	`

	goal.ID = uuid.NewString()
	if _, err := r.db.ExecContext(ctx, query, goal.ID, userID, model.FormatWeek(week), goal.Title, tasksJSON); err != nil {
		logger.Get(ctx).Error().Err(err).Str("user_id", userID).Msg("Erro ao criar meta")
		return model.Goal{}, fmt.Errorf("erro ao criar meta: %w", err)
	}
	return goal, nil
}

// UpdateGoal grava título e tasks de uma meta existente do usuário
func (r *GoalRepository) UpdateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error) {
	if _, err := uuid.Parse(goal.ID); err != nil {
		return model.Goal{}, fmt.Errorf("%w: meta %s", model.ErrNotFound, goal.ID)
	}

	goal.Tasks = assignTaskIDs(goal.Tasks)
	tasksJSON, err := encodeTasks(goal.Tasks)
	if err != nil {
		return model.Goal{}, err
	}

	query := `
		UPDATE weekly_goals
		SET title = $1, tasks = $2, week_start = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
	`

	result, err := r.db.ExecContext(ctx, query, goal.Title, tasksJSON, model.FormatWeek(week), goal.ID, userID)
	if err != nil {
		logger.Get(ctx).Error().Err(err).Str("goal_id", goal.ID).Msg("Erro ao atualizar meta")
		return model.Goal{}, fmt.Errorf("erro ao atualizar meta: %w", err)
	}
	if err := expectOneRow(result, goal.ID); err != nil {
		return model.Goal{}, err
	}
	return goal, nil
}

// DeleteGoal remove uma meta do usuário
func (r *GoalRepository) DeleteGoal(ctx context.Context, userID, goalID string) error {
	if _, err := uuid.Parse(goalID); err != nil {
		return fmt.Errorf("%w: meta %s", model.ErrNotFound, goalID)
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM weekly_goals WHERE id = $1 AND user_id = $2", goalID, userID)
	if err != nil {
		return fmt.Errorf("erro ao remover meta: %w", err)
	}
	return expectOneRow(result, goalID)
}

// ListUsersWithGoals retorna os usuários com metas na semana
func (r *GoalRepository) ListUsersWithGoals(ctx context.Context, week time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT user_id FROM weekly_goals WHERE week_start = $1 ORDER BY user_id",
		model.FormatWeek(week))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar usuários: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("erro ao ler usuário: %w", err)
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}

func expectOneRow(result sql.Result, goalID string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao verificar linhas afetadas: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: meta %s", model.ErrNotFound, goalID)
	}
	return nil
}

// assignTaskIDs devolve uma cópia das tasks com id para as que ainda não
// têm; ids repetidos dentro da meta também são trocados
func assignTaskIDs(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for i, task := range tasks {
		if task.ID == "" || seen[task.ID] {
			task.ID = uuid.NewString()
		}
		seen[task.ID] = true
		out[i] = task
	}
	return out
}

// encodeTasks serializa as tasks para JSONB preservando a ordem
func encodeTasks(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar tasks: %w", err)
	}
	return data, nil
}

func decodeTasks(data []byte, goal *model.Goal) error {
	goal.Tasks = []model.Task{}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &goal.Tasks)
}

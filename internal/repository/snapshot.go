package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/model"
)

// SnapshotRepository gerencia os totais diários de tasks concluídas
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository cria um novo repositório de snapshots
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert grava o total do dia, substituindo um registro anterior do mesmo dia
func (r *SnapshotRepository) Upsert(ctx context.Context, userID string, snapshot model.DailySnapshot) error {
	query := `
		INSERT INTO daily_snapshots (user_id, day, tasks_completed, recorded_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, day) DO UPDATE SET
			tasks_completed = EXCLUDED.tasks_completed,
			recorded_at = NOW()
	`

	day := snapshot.Date.Format(model.WeekLayout)
	if _, err := r.db.ExecContext(ctx, query, userID, day, snapshot.TasksCompleted); err != nil {
		logger.Get(ctx).Error().Err(err).Str("user_id", userID).Str("day", day).Msg("Erro ao gravar snapshot diário")
		return fmt.Errorf("erro ao gravar snapshot diário: %w", err)
	}
	return nil
}

// List retorna os snapshots do usuário entre from e to, inclusive
func (r *SnapshotRepository) List(ctx context.Context, userID string, from, to time.Time) ([]model.DailySnapshot, error) {
	query := `
		SELECT day, tasks_completed
		FROM daily_snapshots
		WHERE user_id = $1 AND day BETWEEN $2 AND $3
		ORDER BY day DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from.Format(model.WeekLayout), to.Format(model.WeekLayout))
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar snapshots: %w", err)
	}
	defer rows.Close()

	loc := to.Location()
	snapshots := []model.DailySnapshot{}
	for rows.Next() {
		var day time.Time
		var s model.DailySnapshot
		if err := rows.Scan(&day, &s.TasksCompleted); err != nil {
			return nil, fmt.Errorf("erro ao ler snapshot: %w", err)
		}
		// DATE volta como meia-noite UTC; reancora no fuso do chamador
		s.Date = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

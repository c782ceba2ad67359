package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
)

// Store reúne metas e snapshots do PostgreSQL atrás da interface de armazenamento do serviço
type Store struct {
	db        *sql.DB
	goals     *GoalRepository
	snapshots *SnapshotRepository
}

// NewStore cria o armazenamento PostgreSQL
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		goals:     NewGoalRepository(db),
		snapshots: NewSnapshotRepository(db),
	}
}

func (s *Store) ListGoals(ctx context.Context, userID string, week time.Time) ([]model.Goal, error) {
	return s.goals.ListGoals(ctx, userID, week)
}

func (s *Store) CreateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error) {
	return s.goals.CreateGoal(ctx, userID, week, goal)
}

func (s *Store) UpdateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error) {
	return s.goals.UpdateGoal(ctx, userID, week, goal)
}

func (s *Store) DeleteGoal(ctx context.Context, userID, goalID string) error {
	return s.goals.DeleteGoal(ctx, userID, goalID)
}

func (s *Store) ListSnapshots(ctx context.Context, userID string, from, to time.Time) ([]model.DailySnapshot, error) {
	return s.snapshots.List(ctx, userID, from, to)
}

func (s *Store) RecordSnapshot(ctx context.Context, userID string, snapshot model.DailySnapshot) error {
	return s.snapshots.Upsert(ctx, userID, snapshot)
}

// ListUsers retorna os usuários com metas na semana
func (s *Store) ListUsers(ctx context.Context, week time.Time) ([]string, error) {
	return s.goals.ListUsersWithGoals(ctx, week)
}

// Ping verifica a conexão com o banco
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

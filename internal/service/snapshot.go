package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/analytics"
	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/metrics"
	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/robfig/cron/v3"
)

// SnapshotService records how many tasks each user completed per day, on
// demand and on a cron schedule
type SnapshotService struct {
	store       GoalStore
	goals       *GoalService
	invalidator Invalidator

	cron     *cron.Cron
	schedule string
	timeout  time.Duration
	now      func() time.Time
}

// NewSnapshotService cria o serviço de snapshots; schedule usa o formato cron
// de cinco campos
func NewSnapshotService(store GoalStore, goals *GoalService, invalidator Invalidator, schedule string) *SnapshotService {
	return &SnapshotService{
		store:       store,
		goals:       goals,
		invalidator: invalidator,
		cron:        cron.New(),
		schedule:    schedule,
		timeout:     5 * time.Minute,
		now:         time.Now,
	}
}

// Record stores one day's total for a user
func (s *SnapshotService) Record(ctx context.Context, userID string, snapshot model.DailySnapshot) error {
	if userID == "" {
		return ErrMissingUser
	}
	if snapshot.TasksCompleted < 0 {
		return fmt.Errorf("%w: tasksCompleted negativo", model.ErrInvalidGoal)
	}
	snapshot.Date = model.Midnight(snapshot.Date)

	err := s.store.RecordSnapshot(ctx, userID, snapshot)
	metrics.Get().IncrementSnapshot(err == nil)

	event := logger.AuditEvent{
		Action:     logger.AuditActionSnapshotRecord,
		UserID:     userID,
		Resource:   "snapshot",
		ResourceID: snapshot.Date.Format(model.WeekLayout),
		Success:    err == nil,
		Details:    map[string]interface{}{"tasks_completed": snapshot.TasksCompleted},
	}
	if err != nil {
		event.Error = err.Error()
	}
	logger.Audit(ctx, event)

	if err != nil {
		return fmt.Errorf("erro ao registrar snapshot: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}
	return nil
}

// CompletedOn counts the tasks scheduled on day that are done
func CompletedOn(goals []model.Goal, day model.Weekday) int {
	count := 0
	for _, task := range analytics.TasksForDay(goals, day) {
		if task.Completed {
			count++
		}
	}
	return count
}

// RecordDay snapshots day for every known user and returns how many were
// recorded. It keeps going past individual failures and returns the first.
func (s *SnapshotService) RecordDay(ctx context.Context, day time.Time) (int, error) {
	week := model.WeekStart(day)
	users, err := s.goals.KnownUsers(ctx, week)
	if err != nil {
		return 0, fmt.Errorf("erro ao listar usuários: %w", err)
	}

	log := logger.Get(ctx)
	recorded := 0
	var firstErr error
	for _, userID := range users {
		goals, err := s.store.ListGoals(ctx, userID, week)
		if err == nil {
			err = s.Record(ctx, userID, model.DailySnapshot{
				Date:           day,
				TasksCompleted: CompletedOn(goals, model.WeekdayOf(day)),
			})
		}
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Erro ao registrar snapshot diário")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		recorded++
	}
	return recorded, firstErr
}

// Start agenda o registro diário
func (s *SnapshotService) Start() error {
	log := logger.Global()

	_, err := s.cron.AddFunc(s.schedule, s.runScheduled)
	if err != nil {
		return fmt.Errorf("erro ao agendar snapshots (%q): %w", s.schedule, err)
	}

	s.cron.Start()
	log.Info().Str("schedule", s.schedule).Msg("Agendador de snapshots iniciado")
	return nil
}

// Stop espera o job em andamento terminar
func (s *SnapshotService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Global().Info().Msg("Agendador de snapshots parado")
}

func (s *SnapshotService) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	recorded, err := s.RecordDay(ctx, s.now())
	log := logger.Global()
	if err != nil {
		log.Error().Err(err).Int("recorded", recorded).Msg("Snapshot diário concluído com erros")
		return
	}
	log.Info().Int("recorded", recorded).Msg("Snapshot diário concluído")
}

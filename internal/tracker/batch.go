package tracker

import (
	"context"
	"fmt"

	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/model"
)

// GoalWriter is the store behind a batch save. Implementations are scoped
// to a single user and week.
type GoalWriter interface {
	CreateGoal(ctx context.Context, goal model.Goal) (model.Goal, error)
	UpdateGoal(ctx context.Context, goal model.Goal) (model.Goal, error)
	DeleteGoal(ctx context.Context, goalID string) error
}

// Operation names the write chosen for a goal
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpSkip   Operation = "skip"
)

// Plan splits a batch by the write each goal needs
type Plan struct {
	Create []model.Goal
	Update []model.Goal
	Skip   []model.Goal
}

// Classify decides, without writing anything, what each goal needs
func (t *ChangeTracker) Classify(goals []model.Goal) Plan {
	var plan Plan
	for _, goal := range goals {
		switch t.operationFor(goal) {
		case OpCreate:
			plan.Create = append(plan.Create, goal)
		case OpUpdate:
			plan.Update = append(plan.Update, goal)
		default:
			plan.Skip = append(plan.Skip, goal)
		}
	}
	return plan
}

func (t *ChangeTracker) operationFor(goal model.Goal) Operation {
	if goal.IsDraft() {
		return OpCreate
	}
	if t.HasChanged(goal.ID, StateOf(goal)) {
		return OpUpdate
	}
	return OpSkip
}

// GoalFailure is a write that did not succeed
type GoalFailure struct {
	Goal   model.Goal `json:"goal"`
	Op     Operation  `json:"op"`
	Reason string     `json:"error"`
	Err    error      `json:"-"`
}

// Error implements error
func (f GoalFailure) Error() string {
	name := f.Goal.Title
	if name == "" {
		name = f.Goal.ID
	}
	return fmt.Sprintf("%s %q: %v", f.Op, name, f.Err)
}

// Unwrap exposes the underlying write error
func (f GoalFailure) Unwrap() error {
	return f.Err
}

// BatchResult is the outcome of a batch save. Created goals carry the id
// assigned by the store.
type BatchResult struct {
	Created  []model.Goal  `json:"created"`
	Updated  []model.Goal  `json:"updated"`
	Skipped  []model.Goal  `json:"skipped"`
	Failed   []GoalFailure `json:"failed,omitempty"`
	FirstErr error         `json:"-"`

	ordered []model.Goal
}

// Saved counts goals written successfully
func (r BatchResult) Saved() int {
	return len(r.Created) + len(r.Updated)
}

// Err returns the first failure, nil when every write succeeded
func (r BatchResult) Err() error {
	return r.FirstErr
}

// Goals returns the batch in request order, created goals carrying their
// new ids
func (r BatchResult) Goals() []model.Goal {
	return r.ordered
}

// Summary renders the result for display
func (r BatchResult) Summary() string {
	msg := fmt.Sprintf("%d metas salvas, %d sem alterações", r.Saved(), len(r.Skipped))
	if len(r.Failed) > 0 {
		msg += fmt.Sprintf(", %d falharam: %v", len(r.Failed), r.FirstErr)
	}
	return msg
}

func (r *BatchResult) fail(goal model.Goal, op Operation, err error) {
	failure := GoalFailure{Goal: goal, Op: op, Reason: err.Error(), Err: err}
	r.Failed = append(r.Failed, failure)
	if r.FirstErr == nil {
		r.FirstErr = failure
	}
}

// Progress is reported after every goal of a batch
type Progress struct {
	Processed int
	Total     int
	Goal      model.Goal
	Op        Operation
	Err       error
}

// ProgressFunc receives batch progress; it may be nil
type ProgressFunc func(Progress)

// ReconcileBatch writes the goals that need it, one at a time in list order.
// A failed write is recorded and the batch moves on; nothing already written
// is rolled back and a failed goal keeps its old baseline so it is retried
// on the next save. Goals left when ctx is cancelled are reported as failed.
func (t *ChangeTracker) ReconcileBatch(ctx context.Context, goals []model.Goal, writer GoalWriter, progress ProgressFunc) BatchResult {
	log := logger.Get(ctx)
	result := BatchResult{
		Created: []model.Goal{},
		Updated: []model.Goal{},
		Skipped: []model.Goal{},
		ordered: make([]model.Goal, 0, len(goals)),
	}

	for i, goal := range goals {
		op := t.operationFor(goal)
		saved, err := t.apply(ctx, &result, goal, op, writer)
		result.ordered = append(result.ordered, saved)
		if err != nil {
			log.Warn().
				Str("goal_id", goal.ID).
				Str("op", string(op)).
				Err(err).
				Msg("Erro ao salvar meta")
		}

		if progress != nil {
			progress(Progress{Processed: i + 1, Total: len(goals), Goal: goal, Op: op, Err: err})
		}
	}

	log.Debug().
		Int("created", len(result.Created)).
		Int("updated", len(result.Updated)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Msg("Lote de metas processado")

	return result
}

func (t *ChangeTracker) apply(ctx context.Context, result *BatchResult, goal model.Goal, op Operation, writer GoalWriter) (model.Goal, error) {
	if op == OpSkip {
		result.Skipped = append(result.Skipped, goal)
		return goal, nil
	}

	if err := ctx.Err(); err != nil {
		result.fail(goal, op, err)
		return goal, err
	}
	if err := goal.Validate(); err != nil {
		result.fail(goal, op, err)
		return goal, err
	}

	switch op {
	case OpCreate:
		saved, err := writer.CreateGoal(ctx, goal)
		if err == nil && saved.ID == "" {
			err = fmt.Errorf("%w: meta criada sem id", model.ErrInvalidResponse)
		}
		if err != nil {
			result.fail(goal, op, err)
			return goal, err
		}
		goal = persisted(goal, saved)
		t.StoreSnapshot(goal.ID, StateOf(goal))
		result.Created = append(result.Created, goal)

	case OpUpdate:
		saved, err := writer.UpdateGoal(ctx, goal)
		if err != nil {
			result.fail(goal, op, err)
			return goal, err
		}
		goal = persisted(goal, saved)
		t.StoreSnapshot(goal.ID, StateOf(goal))
		result.Updated = append(result.Updated, goal)
	}
	return goal, nil
}

// persisted is the submitted goal as the store holds it: the id it assigned
// and its task list when the echo carries every task, ids included
func persisted(submitted, echo model.Goal) model.Goal {
	if echo.ID != "" {
		submitted.ID = echo.ID
	}
	if len(echo.Tasks) > 0 && len(echo.Tasks) == len(submitted.Tasks) {
		submitted.Tasks = echo.Tasks
	}
	return submitted
}

// DeleteGoal removes a goal from the store and drops its baseline. The
// baseline is kept when the store refuses the delete.
func (t *ChangeTracker) DeleteGoal(ctx context.Context, goalID string, writer GoalWriter) error {
	if goalID == "" {
		return fmt.Errorf("%w: id obrigatório para remover meta", model.ErrInvalidGoal)
	}
	if err := writer.DeleteGoal(ctx, goalID); err != nil {
		return fmt.Errorf("erro ao remover meta %s: %w", goalID, err)
	}
	t.Forget(goalID)
	return nil
}

package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/metrics"
	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/cleberrangel/journey-goals-api/internal/tracker"
	"github.com/cleberrangel/journey-goals-api/internal/websocket"
	"github.com/google/uuid"
)

// ErrMissingUser indica requisição sem usuário identificado
var ErrMissingUser = errors.New("usuário não informado")

// GoalStore is where goals and daily snapshots live. Both the Postgres
// repository and the remote Journey client implement it.
type GoalStore interface {
	ListGoals(ctx context.Context, userID string, week time.Time) ([]model.Goal, error)
	CreateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error)
	UpdateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
	ListSnapshots(ctx context.Context, userID string, from, to time.Time) ([]model.DailySnapshot, error)
	RecordSnapshot(ctx context.Context, userID string, snapshot model.DailySnapshot) error
}

// userLister is implemented by stores that can enumerate users with goals
type userLister interface {
	ListUsers(ctx context.Context, week time.Time) ([]string, error)
}

// Notifier receives live save progress
type Notifier interface {
	SendProgress(userID string, progress websocket.SaveProgress)
	SendSaveComplete(userID string, summary interface{})
}

// Invalidator drops cached data derived from a user's goals
type Invalidator interface {
	Invalidate(userID string)
}

// SaveResult is returned by Save
type SaveResult struct {
	Week    string              `json:"week"`
	Summary string              `json:"summary"`
	Goals   []model.Goal        `json:"goals"`
	Result  tracker.BatchResult `json:"result"`
}

// GoalService loads and saves a user's weekly goals, keeping one change
// tracker per user so unchanged goals are never written twice. Saves for the
// same user are serialized.
type GoalService struct {
	store       GoalStore
	notifier    Notifier
	invalidator Invalidator

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu      sync.Mutex
	tracker *tracker.ChangeTracker
}

// NewGoalService cria o serviço de metas; notifier e invalidator podem ser nil
func NewGoalService(store GoalStore, notifier Notifier, invalidator Invalidator) *GoalService {
	return &GoalService{
		store:       store,
		notifier:    notifier,
		invalidator: invalidator,
		sessions:    make(map[string]*session),
	}
}

func (s *GoalService) session(userID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{tracker: tracker.New()}
		s.sessions[userID] = sess
	}
	return sess
}

// Load reads the week's goals and resets the user's baselines to them
func (s *GoalService) Load(ctx context.Context, userID string, week time.Time) ([]model.Goal, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	goals, err := s.store.ListGoals(ctx, userID, week)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []model.Goal{}
	}
	sess.tracker.Reset(goals)

	logger.Get(ctx).Debug().
		Str("week", model.FormatWeek(week)).
		Int("goals", len(goals)).
		Msg("Metas carregadas")

	return goals, nil
}

// Save writes drafts and changed goals of the batch in order and skips the
// rest. Per-goal failures are part of the result, not an error.
func (s *GoalService) Save(ctx context.Context, userID string, week time.Time, goals []model.Goal) (*SaveResult, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	weekStr := model.FormatWeek(week)
	ctx = logger.WithOperationID(ctx, uuid.NewString())
	log := logger.Get(ctx)
	log.Info().
		Str("week", weekStr).
		Int("goals", len(goals)).
		Msg("Salvando metas da semana")

	writer := scopedWriter{store: s.store, userID: userID, week: week}
	result := sess.tracker.ReconcileBatch(ctx, goals, writer, s.progressFor(userID, weekStr))

	metrics.Get().RecordBatch(len(result.Created), len(result.Updated), len(result.Skipped), len(result.Failed))
	logger.AuditGoalsSave(ctx, userID, weekStr,
		len(result.Created), len(result.Updated), len(result.Skipped), len(result.Failed), result.Err())

	if result.Saved() > 0 && s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}

	out := &SaveResult{
		Week:    weekStr,
		Summary: result.Summary(),
		Goals:   result.Goals(),
		Result:  result,
	}
	if s.notifier != nil {
		s.notifier.SendSaveComplete(userID, out)
	}

	log.Info().
		Str("week", weekStr).
		Str("summary", out.Summary).
		Msg("Metas salvas")

	return out, nil
}

func (s *GoalService) progressFor(userID, week string) tracker.ProgressFunc {
	if s.notifier == nil {
		return nil
	}
	return func(p tracker.Progress) {
		update := websocket.SaveProgress{
			Week:      week,
			Processed: p.Processed,
			Total:     p.Total,
			GoalID:    p.Goal.ID,
			Title:     p.Goal.Title,
			Op:        string(p.Op),
			Status:    "ok",
		}
		if p.Err != nil {
			update.Status = "failed"
			update.Error = p.Err.Error()
		}
		s.notifier.SendProgress(userID, update)
	}
}

// HasChanged reports whether goal differs from its last saved state. Drafts
// and goals never loaded always count as changed.
func (s *GoalService) HasChanged(userID string, goal model.Goal) bool {
	if goal.IsDraft() {
		return true
	}
	return s.session(userID).tracker.HasChanged(goal.ID, tracker.StateOf(goal))
}

// Delete removes a goal immediately, outside of any batch
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	err := sess.tracker.DeleteGoal(ctx, goalID, scopedWriter{store: s.store, userID: userID})
	metrics.Get().IncrementGoalDeleted(err == nil)

	event := logger.AuditEvent{
		Action:     logger.AuditActionGoalDelete,
		UserID:     userID,
		Resource:   "goal",
		ResourceID: goalID,
		Success:    err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	logger.Audit(ctx, event)

	if err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}
	return nil
}

// KnownUsers returns users seen by this process plus, when the store can
// tell, users with goals in week
func (s *GoalService) KnownUsers(ctx context.Context, week time.Time) ([]string, error) {
	seen := make(map[string]bool)

	s.mu.Lock()
	for userID := range s.sessions {
		seen[userID] = true
	}
	s.mu.Unlock()

	if lister, ok := s.store.(userLister); ok {
		users, err := lister.ListUsers(ctx, week)
		if err != nil {
			return nil, err
		}
		for _, userID := range users {
			seen[userID] = true
		}
	}

	users := make([]string, 0, len(seen))
	for userID := range seen {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users, nil
}

// scopedWriter binds a store to one user and week and times every write
type scopedWriter struct {
	store  GoalStore
	userID string
	week   time.Time
}

func (w scopedWriter) CreateGoal(ctx context.Context, goal model.Goal) (model.Goal, error) {
	start := time.Now()
	saved, err := w.store.CreateGoal(ctx, w.userID, w.week, goal)
	metrics.Get().IncrementGoalWrite(string(tracker.OpCreate), err == nil, time.Since(start).Milliseconds())
	return saved, err
}

func (w scopedWriter) UpdateGoal(ctx context.Context, goal model.Goal) (model.Goal, error) {
	start := time.Now()
	saved, err := w.store.UpdateGoal(ctx, w.userID, w.week, goal)
	metrics.Get().IncrementGoalWrite(string(tracker.OpUpdate), err == nil, time.Since(start).Milliseconds())
	return saved, err
}

func (w scopedWriter) DeleteGoal(ctx context.Context, goalID string) error {
	return w.store.DeleteGoal(ctx, w.userID, goalID)
}

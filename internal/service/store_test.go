package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/cleberrangel/journey-goals-api/internal/websocket"
)

// memStore is an in-memory GoalStore
type memStore struct {
	mu        sync.Mutex
	nextID    int
	goals     map[string]map[string][]model.Goal // user -> week -> goals
	snapshots map[string][]model.DailySnapshot
	failOn    map[string]error // goal title -> error
	writes    int
	lists     int

	// onList runs inside ListGoals, after the goals were read
	onList func()
}

func newMemStore() *memStore {
	return &memStore{
		goals:     make(map[string]map[string][]model.Goal),
		snapshots: make(map[string][]model.DailySnapshot),
		failOn:    make(map[string]error),
	}
}

func (s *memStore) seed(userID string, week time.Time, goals ...model.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.goals[userID] == nil {
		s.goals[userID] = make(map[string][]model.Goal)
	}
	s.goals[userID][model.FormatWeek(week)] = append(s.goals[userID][model.FormatWeek(week)], goals...)
}

func (s *memStore) ListGoals(ctx context.Context, userID string, week time.Time) ([]model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	var out []model.Goal
	for _, g := range s.goals[userID][model.FormatWeek(week)] {
		g.Tasks = append([]model.Task{}, g.Tasks...)
		out = append(out, g)
	}
	if s.onList != nil {
		s.onList()
	}
	return out, nil
}

func (s *memStore) CreateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[goal.Title]; err != nil {
		return model.Goal{}, err
	}
	s.writes++
	s.nextID++
	goal.ID = fmt.Sprintf("g%d", s.nextID)
	if s.goals[userID] == nil {
		s.goals[userID] = make(map[string][]model.Goal)
	}
	key := model.FormatWeek(week)
	s.goals[userID][key] = append(s.goals[userID][key], goal)
	return goal, nil
}

func (s *memStore) UpdateGoal(ctx context.Context, userID string, week time.Time, goal model.Goal) (model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[goal.Title]; err != nil {
		return model.Goal{}, err
	}
	goals := s.goals[userID][model.FormatWeek(week)]
	for i := range goals {
		if goals[i].ID == goal.ID {
			s.writes++
			goals[i] = goal
			return goal, nil
		}
	}
	return model.Goal{}, model.ErrNotFound
}

func (s *memStore) DeleteGoal(ctx context.Context, userID, goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for week, goals := range s.goals[userID] {
		for i := range goals {
			if goals[i].ID == goalID {
				s.writes++
				s.goals[userID][week] = append(goals[:i], goals[i+1:]...)
				return nil
			}
		}
	}
	return model.ErrNotFound
}

func (s *memStore) ListSnapshots(ctx context.Context, userID string, from, to time.Time) ([]model.DailySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.DailySnapshot
	for _, snap := range s.snapshots[userID] {
		if !snap.Date.Before(from) && !snap.Date.After(to) {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *memStore) RecordSnapshot(ctx context.Context, userID string, snapshot model.DailySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.snapshots[userID] {
		if existing.Date.Equal(snapshot.Date) {
			s.snapshots[userID][i] = snapshot
			return nil
		}
	}
	s.snapshots[userID] = append(s.snapshots[userID], snapshot)
	return nil
}

// recordingNotifier keeps every message pushed to it
type recordingNotifier struct {
	mu        sync.Mutex
	progress  []websocket.SaveProgress
	completes int
}

func (n *recordingNotifier) SendProgress(userID string, p websocket.SaveProgress) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, p)
}

func (n *recordingNotifier) SendSaveComplete(userID string, summary interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completes++
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingInvalidator) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[userID]++
}

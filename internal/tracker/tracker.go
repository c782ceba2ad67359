// Package tracker keeps the last saved state of each goal and decides which
// goals of a batch need a create, an update or no write at all.
package tracker

import (
	"encoding/json"
	"sync"

	"github.com/cleberrangel/journey-goals-api/internal/model"
)

// GoalState is the part of a goal compared between saves. Task order is
// part of the state; map-free structs keep the encoded key order fixed.
type GoalState struct {
	Title string       `json:"title"`
	Tasks []model.Task `json:"tasks"`
}

// StateOf extracts the compared state of a goal
func StateOf(goal model.Goal) GoalState {
	tasks := goal.Tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	return GoalState{Title: goal.Title, Tasks: tasks}
}

func (s GoalState) encode() string {
	if s.Tasks == nil {
		s.Tasks = []model.Task{}
	}
	// GoalState has no channels, funcs or maps, Marshal cannot fail
	data, _ := json.Marshal(s)
	return string(data)
}

// ChangeTracker holds the serialized baseline of every saved goal.
// It is safe for concurrent use; callers still serialize saves of the
// same goal so a baseline is never read while its write is in flight.
type ChangeTracker struct {
	mu        sync.RWMutex
	snapshots map[string]string
}

// New creates an empty tracker
func New() *ChangeTracker {
	return &ChangeTracker{snapshots: make(map[string]string)}
}

// StoreSnapshot records state as the new baseline for goalID
func (t *ChangeTracker) StoreSnapshot(goalID string, state GoalState) {
	if goalID == "" {
		return
	}
	encoded := state.encode()

	t.mu.Lock()
	t.snapshots[goalID] = encoded
	t.mu.Unlock()
}

// HasChanged reports whether state differs from the baseline. A goal with
// no baseline is always considered changed.
func (t *ChangeTracker) HasChanged(goalID string, state GoalState) bool {
	t.mu.RLock()
	stored, ok := t.snapshots[goalID]
	t.mu.RUnlock()

	if !ok {
		return true
	}
	return stored != state.encode()
}

// Forget drops the baseline of a deleted goal
func (t *ChangeTracker) Forget(goalID string) {
	t.mu.Lock()
	delete(t.snapshots, goalID)
	t.mu.Unlock()
}

// Reset replaces every baseline with the given collection, as loaded from
// the store. Goals without id are ignored.
func (t *ChangeTracker) Reset(goals []model.Goal) {
	snapshots := make(map[string]string, len(goals))
	for _, goal := range goals {
		if goal.IsDraft() {
			continue
		}
		snapshots[goal.ID] = StateOf(goal).encode()
	}

	t.mu.Lock()
	t.snapshots = snapshots
	t.mu.Unlock()
}

// Len returns the number of stored baselines
func (t *ChangeTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.snapshots)
}

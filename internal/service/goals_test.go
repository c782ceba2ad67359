package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWeek = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func task(name string, est int, day model.Weekday, done bool) model.Task {
	return model.Task{Name: name, EstTime: est, Day: day, RepeatType: model.RepeatNone, Completed: done}
}

func TestLoadThenSaveSkipsUnchanged(t *testing.T) {
	store := newMemStore()
	store.seed("u1", testWeek,
		model.Goal{ID: "a", Title: "Saúde", Tasks: []model.Task{task("correr", 30, model.Monday, false)}},
		model.Goal{ID: "b", Title: "Leitura", Tasks: []model.Task{task("ler", 20, model.Tuesday, false)}},
	)
	svc := NewGoalService(store, nil, nil)
	ctx := context.Background()

	goals, err := svc.Load(ctx, "u1", testWeek)
	require.NoError(t, err)
	require.Len(t, goals, 2)

	goals[1].Tasks[0].Completed = true
	goals = append(goals, model.Goal{Title: "Nova", Tasks: []model.Task{}})

	res, err := svc.Save(ctx, "u1", testWeek, goals)
	require.NoError(t, err)
	assert.Len(t, res.Result.Created, 1)
	assert.Len(t, res.Result.Updated, 1)
	assert.Len(t, res.Result.Skipped, 1)
	assert.Equal(t, "2 metas salvas, 1 sem alterações", res.Summary)
	assert.Equal(t, 2, store.writes)

	require.Len(t, res.Goals, 3)
	assert.Equal(t, "a", res.Goals[0].ID)
	assert.NotEmpty(t, res.Goals[2].ID, "draft gets the store id")

	// second save with the returned goals writes nothing
	again, err := svc.Save(ctx, "u1", testWeek, res.Goals)
	require.NoError(t, err)
	assert.Len(t, again.Result.Skipped, 3)
	assert.Equal(t, 2, store.writes)
}

func TestSaveFailureKeepsGoalDirty(t *testing.T) {
	store := newMemStore()
	store.seed("u1", testWeek, model.Goal{ID: "a", Title: "Saúde", Tasks: []model.Task{}})
	notifier := &recordingNotifier{}
	invalidator := &countingInvalidator{}
	svc := NewGoalService(store, notifier, invalidator)
	ctx := context.Background()

	goals, err := svc.Load(ctx, "u1", testWeek)
	require.NoError(t, err)

	store.failOn["Saúde!"] = errors.New("indisponível")
	goals[0].Title = "Saúde!"
	batch := append(goals, model.Goal{Title: "Outra"})

	res, err := svc.Save(ctx, "u1", testWeek, batch)
	require.NoError(t, err)
	require.Len(t, res.Result.Failed, 1)
	assert.Equal(t, "a", res.Result.Failed[0].Goal.ID)
	assert.Len(t, res.Result.Created, 1)
	assert.Contains(t, res.Summary, "1 falharam")

	assert.True(t, svc.HasChanged("u1", goals[0]), "failed goal must stay dirty")
	assert.Equal(t, 1, invalidator.calls["u1"])

	require.Len(t, notifier.progress, 2)
	assert.Equal(t, "failed", notifier.progress[0].Status)
	assert.Equal(t, "ok", notifier.progress[1].Status)
	assert.Equal(t, 2, notifier.progress[1].Processed)
	assert.Equal(t, 1, notifier.completes)
}

func TestHasChanged(t *testing.T) {
	store := newMemStore()
	store.seed("u1", testWeek, model.Goal{ID: "a", Title: "Saúde", Tasks: []model.Task{task("correr", 30, model.Monday, false)}})
	svc := NewGoalService(store, nil, nil)

	goals, err := svc.Load(context.Background(), "u1", testWeek)
	require.NoError(t, err)

	assert.False(t, svc.HasChanged("u1", goals[0]))
	assert.True(t, svc.HasChanged("u1", model.Goal{Title: "rascunho"}))
	assert.True(t, svc.HasChanged("u2", goals[0]), "other users have no baseline")

	goals[0].Tasks[0].EstTime = 45
	assert.True(t, svc.HasChanged("u1", goals[0]))
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	store.seed("u1", testWeek, model.Goal{ID: "a", Title: "Saúde", Tasks: []model.Task{}})
	invalidator := &countingInvalidator{}
	svc := NewGoalService(store, nil, invalidator)
	ctx := context.Background()

	goals, err := svc.Load(ctx, "u1", testWeek)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", "a"))
	assert.True(t, svc.HasChanged("u1", goals[0]), "deleted goal has no baseline")
	assert.Equal(t, 1, invalidator.calls["u1"])

	err = svc.Delete(ctx, "u1", "a")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 1, invalidator.calls["u1"])
}

func TestMissingUser(t *testing.T) {
	svc := NewGoalService(newMemStore(), nil, nil)
	ctx := context.Background()

	_, err := svc.Load(ctx, "", testWeek)
	assert.ErrorIs(t, err, ErrMissingUser)
	_, err = svc.Save(ctx, "", testWeek, nil)
	assert.ErrorIs(t, err, ErrMissingUser)
	assert.ErrorIs(t, svc.Delete(ctx, "", "a"), ErrMissingUser)
}

func TestConcurrentSavesForOneUserDoNotDuplicate(t *testing.T) {
	store := newMemStore()
	store.seed("u1", testWeek, model.Goal{ID: "a", Title: "Saúde", Tasks: []model.Task{}})
	svc := NewGoalService(store, nil, nil)
	ctx := context.Background()

	goals, err := svc.Load(ctx, "u1", testWeek)
	require.NoError(t, err)
	goals[0].Title = "Saúde e sono"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Save(ctx, "u1", testWeek, goals)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.writes, "only the first save writes the change")
}

func TestKnownUsers(t *testing.T) {
	svc := NewGoalService(newMemStore(), nil, nil)
	ctx := context.Background()

	_, _ = svc.Load(ctx, "b", testWeek)
	_, _ = svc.Load(ctx, "a", testWeek)

	users, err := svc.KnownUsers(ctx, testWeek)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, users)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seededStore() *memStore {
	spent := 30
	store := newMemStore()
	store.seed("u1", testWeek,
		model.Goal{ID: "a", Title: "Saúde", Tasks: []model.Task{
			{Name: "correr", EstTime: 30, TimeSpent: &spent, Day: model.Monday, RepeatType: model.RepeatNone, Completed: true},
			{Name: "alongar", EstTime: 15, Day: model.Wednesday, RepeatType: model.RepeatNone},
		}},
		model.Goal{ID: "b", Title: "Leitura", Tasks: []model.Task{
			{Name: "cap 1", EstTime: 20, Day: model.Monday, RepeatType: model.RepeatNone, Completed: true},
			{Name: "cap 2", EstTime: 20, Day: model.Tuesday, RepeatType: model.RepeatNone},
			{Name: "cap 3", EstTime: 20, Day: model.Thursday, RepeatType: model.RepeatNone},
		}},
	)
	return store
}

func TestDashboardSummaryIsCachedUntilInvalidated(t *testing.T) {
	store := seededStore()
	svc := NewDashboardService(store, time.Minute, false)
	defer svc.Close()
	ctx := context.Background()
	wednesday := testWeek.AddDate(0, 0, 2).Add(9 * time.Hour)

	summary, err := svc.Summary(ctx, "u1", testWeek, wednesday)
	require.NoError(t, err)
	assert.Equal(t, 40, summary.CompletionRate)
	assert.Equal(t, 40, summary.ProductivityScore)
	assert.Equal(t, model.Wednesday, summary.Today)
	assert.Equal(t, "2025-01-06", summary.Week)
	assert.Equal(t, 5, summary.TotalTasks)
	assert.Equal(t, 1, store.lists)

	_, err = svc.Summary(ctx, "u1", testWeek, wednesday)
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists, "second call is served from cache")
	assert.Equal(t, int64(1), svc.CacheStats().HitCount)

	svc.Invalidate("u1")
	_, err = svc.Summary(ctx, "u1", testWeek, wednesday)
	require.NoError(t, err)
	assert.Equal(t, 2, store.lists)
}

func TestDashboardDoesNotCacheAcrossInvalidation(t *testing.T) {
	store := seededStore()
	svc := NewDashboardService(store, time.Minute, false)
	defer svc.Close()
	ctx := context.Background()
	wednesday := testWeek.AddDate(0, 0, 2).Add(9 * time.Hour)

	// a save lands after the goals were read but before the summary is cached
	store.onList = func() {
		store.onList = nil
		svc.Invalidate("u1")
	}
	_, err := svc.Summary(ctx, "u1", testWeek, wednesday)
	require.NoError(t, err)
	assert.Equal(t, 0, svc.CacheStats().ItemCount, "summary read before the invalidation must not be cached")

	_, err = svc.Summary(ctx, "u1", testWeek, wednesday)
	require.NoError(t, err)
	assert.Equal(t, 2, store.lists)
	assert.Equal(t, 1, svc.CacheStats().ItemCount)
}

func TestDashboardUsesSnapshotsForDailyStreak(t *testing.T) {
	store := seededStore()
	ctx := context.Background()
	tuesday := testWeek.AddDate(0, 0, 1)
	require.NoError(t, store.RecordSnapshot(ctx, "u1", model.DailySnapshot{Date: testWeek, TasksCompleted: 2}))
	require.NoError(t, store.RecordSnapshot(ctx, "u1", model.DailySnapshot{Date: tuesday, TasksCompleted: 1}))

	svc := NewDashboardService(store, time.Minute, false)
	defer svc.Close()

	summary, err := svc.Summary(ctx, "u1", testWeek, tuesday.Add(20*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.DailyStreak)
}

func TestClampToWeek(t *testing.T) {
	inside := testWeek.AddDate(0, 0, 3)
	assert.Equal(t, inside, ClampToWeek(testWeek, inside))

	sundayNoon := time.Date(2025, 1, 12, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, sundayNoon, ClampToWeek(testWeek, testWeek.AddDate(0, 1, 0)))
	assert.Equal(t, sundayNoon, ClampToWeek(testWeek, testWeek.Add(-time.Second)))
}

func TestWeeklyReport(t *testing.T) {
	store := seededStore()
	dashboard := NewDashboardService(store, time.Minute, false)
	defer dashboard.Close()
	reports := NewReportService(store, dashboard)
	reports.now = func() time.Time { return testWeek.AddDate(0, 0, 2) }

	report, err := reports.WeeklyReport(context.Background(), "u1", testWeek)
	require.NoError(t, err)
	assert.Equal(t, "metas_2025-01-06.xlsx", report.Filename)
	assert.Equal(t, 2, report.TotalGoals)
	assert.Equal(t, 5, report.TotalTasks)

	f, err := excelize.OpenReader(report.Content)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(goalsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Meta", header)

	rows, err := f.GetRows(goalsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
	assert.Equal(t, []string{"Saúde", "correr", "Mon", "none", "30", "30", "Sim"}, rows[1])

	rate, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "40", rate)
}

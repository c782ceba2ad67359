package analytics

import (
	"testing"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestWeeklyCompletionRate(t *testing.T) {
	tests := []struct {
		name  string
		goals []model.Goal
		want  int
	}{
		{"no goals", nil, 0},
		{"goals without tasks", []model.Goal{{Title: "a"}, {Title: "b", Tasks: []model.Task{}}}, 0},
		{"one of three", []model.Goal{{Tasks: []model.Task{{Completed: true}, {}, {}}}}, 33},
		{"two of three rounds up", []model.Goal{{Tasks: []model.Task{{Completed: true}, {Completed: true}, {}}}}, 67},
		{"half", []model.Goal{{Tasks: []model.Task{{Completed: true}}}, {Tasks: []model.Task{{}}}}, 50},
		{"all done", []model.Goal{{Tasks: []model.Task{{Completed: true}, {Completed: true}}}}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeeklyCompletionRate(tt.goals))
			assert.Equal(t, tt.want, ProductivityScore(tt.goals))
		})
	}
}

func TestFocusTimeStats(t *testing.T) {
	goals := []model.Goal{{
		Title: "Estudar",
		Tasks: []model.Task{
			{Name: "ler", EstTime: 30, Day: model.Monday},
			{Name: "praticar", EstTime: 60, Day: model.Tuesday, Completed: true, TimeSpent: intPtr(45)},
		},
	}}

	assert.Equal(t, model.FocusTimeStats{PlannedMinutes: 90, CompletedMinutes: 45}, FocusTimeStatsFor(goals))
	assert.Equal(t, model.FocusTimeStats{PlannedMinutes: 90, CompletedMinutes: 45}, FocusTimeStatsForTasks(goals[0].Tasks))
}

func TestFocusTimeStatsRepeatingTasks(t *testing.T) {
	goals := []model.Goal{{Tasks: []model.Task{
		{Name: "meditar", EstTime: 10, RepeatType: model.RepeatDaily, Completed: true, TimeSpent: intPtr(70)},
		{Name: "correr", EstTime: 30, RepeatType: model.RepeatAlternate},
		{Name: "sem dia", EstTime: 5},
	}}}

	stats := FocusTimeStatsFor(goals)
	assert.Equal(t, 10*7+30*4+5, stats.PlannedMinutes)
	assert.Equal(t, 70, stats.CompletedMinutes)

	// a completed task without timeSpent contributes nothing
	stats = FocusTimeStatsForTasks([]model.Task{{EstTime: 20, Completed: true}})
	assert.Equal(t, model.FocusTimeStats{PlannedMinutes: 20}, stats)
}

func TestDailyStreak(t *testing.T) {
	now := time.Date(2025, 3, 12, 18, 45, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return time.Date(2025, 3, 12-offset, 9, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		snapshots []model.DailySnapshot
		want      int
	}{
		{"empty", nil, 0},
		{"three consecutive days", []model.DailySnapshot{
			{Date: day(0), TasksCompleted: 3},
			{Date: day(1), TasksCompleted: 2},
			{Date: day(2), TasksCompleted: 1},
		}, 3},
		{"order does not matter", []model.DailySnapshot{
			{Date: day(2), TasksCompleted: 1},
			{Date: day(0), TasksCompleted: 3},
			{Date: day(1), TasksCompleted: 2},
		}, 3},
		{"gap at yesterday", []model.DailySnapshot{
			{Date: day(0), TasksCompleted: 3},
			{Date: day(2), TasksCompleted: 1},
		}, 1},
		{"nothing today", []model.DailySnapshot{
			{Date: day(1), TasksCompleted: 4},
			{Date: day(2), TasksCompleted: 4},
		}, 0},
		{"zero completed breaks", []model.DailySnapshot{
			{Date: day(0), TasksCompleted: 1},
			{Date: day(1), TasksCompleted: 0},
			{Date: day(2), TasksCompleted: 5},
		}, 1},
		{"same day summed", []model.DailySnapshot{
			{Date: day(0), TasksCompleted: 0},
			{Date: day(0).Add(time.Hour), TasksCompleted: 2},
			{Date: day(1), TasksCompleted: 1},
		}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DailyStreak(tt.snapshots, now))
		})
	}
}

func TestDailyStreakUsesCallerLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	// 01:00 UTC on the 13th is still the 12th in BRT
	now := time.Date(2025, 3, 12, 22, 0, 0, 0, loc)
	snapshots := []model.DailySnapshot{
		{Date: time.Date(2025, 3, 13, 1, 0, 0, 0, time.UTC), TasksCompleted: 1},
		{Date: time.Date(2025, 3, 11, 12, 0, 0, 0, loc), TasksCompleted: 1},
	}
	assert.Equal(t, 2, DailyStreak(snapshots, now))
}

func TestDailyCompletionStats(t *testing.T) {
	goals := []model.Goal{
		{Tasks: []model.Task{
			{Name: "a", Day: model.Monday, Completed: true},
			{Name: "b", Day: model.Monday, Completed: true},
			{Name: "c", Day: model.Tuesday, Completed: false},
			{Name: "d", RepeatType: model.RepeatDaily, Completed: false},
		}},
		{Tasks: []model.Task{
			{Name: "e", Day: model.Tuesday, Completed: true},
		}},
	}

	stats := DailyCompletionStats(goals)
	assert.Len(t, stats, 7)
	assert.Equal(t, model.DayStats{HasPlannedTasks: true, AllCompleted: true}, stats[model.Monday])
	assert.Equal(t, model.DayStats{HasPlannedTasks: true, AllCompleted: false}, stats[model.Tuesday])
	assert.Equal(t, model.DayStats{}, stats[model.Wednesday])

	withRepeats := DailyCompletionStatsWithRepeats(goals)
	assert.Equal(t, model.DayStats{HasPlannedTasks: true, AllCompleted: false}, withRepeats[model.Monday])
	assert.Equal(t, model.DayStats{HasPlannedTasks: true, AllCompleted: false}, withRepeats[model.Sunday])
}

func TestCurrentStreak(t *testing.T) {
	done := model.DayStats{HasPlannedTasks: true, AllCompleted: true}
	open := model.DayStats{HasPlannedTasks: true, AllCompleted: false}

	stats := map[model.Weekday]model.DayStats{
		model.Monday:    done,
		model.Tuesday:   done,
		model.Wednesday: open,
	}
	assert.Equal(t, 0, CurrentStreak(stats, model.Wednesday))
	assert.Equal(t, 2, CurrentStreak(stats, model.Tuesday))

	// empty days are skipped, not counted
	skip := map[model.Weekday]model.DayStats{
		model.Monday:   done,
		model.Thursday: done,
		model.Friday:   done,
	}
	assert.Equal(t, 3, CurrentStreak(skip, model.Sunday))
	assert.Equal(t, 0, CurrentStreak(skip, model.Weekday("xyz")))
}

func TestTasksForDay(t *testing.T) {
	goals := []model.Goal{{Tasks: []model.Task{
		{Name: "seg", Day: model.Monday},
		{Name: "diaria", RepeatType: model.RepeatDaily},
		{Name: "alternada", RepeatType: model.RepeatAlternate},
	}}}

	names := func(tasks []model.Task) []string {
		var out []string
		for _, task := range tasks {
			out = append(out, task.Name)
		}
		return out
	}

	assert.Equal(t, []string{"seg", "diaria", "alternada"}, names(TasksForDay(goals, model.Monday)))
	assert.Equal(t, []string{"diaria"}, names(TasksForDay(goals, model.Tuesday)))
}

func TestSummarizeEndToEnd(t *testing.T) {
	// Wednesday
	now := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	goals := []model.Goal{
		{ID: "g1", Title: "Saúde", Tasks: []model.Task{
			{Name: "correr", EstTime: 30, Day: model.Monday, Completed: true, TimeSpent: intPtr(35)},
			{Name: "alongar", EstTime: 10, Day: model.Wednesday},
			{Name: "dormir cedo", EstTime: 0, Day: model.Friday},
		}},
		{ID: "g2", Title: "Estudo", Tasks: []model.Task{
			{Name: "ler", EstTime: 45, Day: model.Tuesday, Completed: true, TimeSpent: intPtr(40)},
			{Name: "revisar", EstTime: 20, Day: model.Wednesday},
		}},
	}
	snapshots := []model.DailySnapshot{
		{Date: time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), TasksCompleted: 1},
		{Date: time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), TasksCompleted: 1},
	}

	summary := Summarize(goals, snapshots, now, false)
	assert.Equal(t, "2025-01-06", summary.Week)
	assert.Equal(t, model.Wednesday, summary.Today)
	assert.Equal(t, 40, summary.CompletionRate)
	assert.Equal(t, 40, summary.ProductivityScore)
	assert.Equal(t, model.FocusTimeStats{PlannedMinutes: 105, CompletedMinutes: 75}, summary.WeekFocus)
	assert.Equal(t, model.FocusTimeStats{PlannedMinutes: 30}, summary.TodayFocus)
	assert.Equal(t, 0, summary.CurrentStreak)
	assert.Equal(t, 2, summary.DailyStreak)
	assert.Equal(t, 2, summary.TotalGoals)
	assert.Equal(t, 5, summary.TotalTasks)
}

// genTask produces tasks with arbitrary schedule and completion state
func genTask() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 240),
		gen.IntRange(0, 240),
		gen.OneConstOf(model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday, model.Saturday, model.Sunday, model.Weekday("")),
		gen.OneConstOf(model.RepeatNone, model.RepeatDaily, model.RepeatAlternate),
		gen.Bool(),
	).Map(func(values []interface{}) model.Task {
		spent := values[1].(int)
		return model.Task{
			Name:       "task",
			EstTime:    values[0].(int),
			TimeSpent:  &spent,
			Day:        values[2].(model.Weekday),
			RepeatType: values[3].(model.RepeatType),
			Completed:  values[4].(bool),
		}
	})
}

func genGoals() gopter.Gen {
	return gen.SliceOf(
		gen.SliceOf(genTask()).Map(func(tasks []model.Task) model.Goal {
			return model.Goal{Title: "goal", Tasks: tasks}
		}),
	)
}

func TestAnalyticsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 20

	properties := gopter.NewProperties(parameters)

	properties.Property("completion rate stays within 0..100", prop.ForAll(
		func(goals []model.Goal) bool {
			rate := WeeklyCompletionRate(goals)
			return rate >= 0 && rate <= 100
		},
		genGoals(),
	))

	properties.Property("productivity score equals completion rate", prop.ForAll(
		func(goals []model.Goal) bool {
			return ProductivityScore(goals) == WeeklyCompletionRate(goals)
		},
		genGoals(),
	))

	properties.Property("completed minutes never exceed total time spent", prop.ForAll(
		func(goals []model.Goal) bool {
			stats := FocusTimeStatsFor(goals)
			spent := 0
			for _, g := range goals {
				for _, task := range g.Tasks {
					spent += task.SpentMinutes()
				}
			}
			return stats.CompletedMinutes >= 0 && stats.CompletedMinutes <= spent && stats.PlannedMinutes >= 0
		},
		genGoals(),
	))

	properties.Property("allCompleted implies hasPlannedTasks", prop.ForAll(
		func(goals []model.Goal) bool {
			for _, stats := range []map[model.Weekday]model.DayStats{
				DailyCompletionStats(goals),
				DailyCompletionStatsWithRepeats(goals),
			} {
				for _, s := range stats {
					if s.AllCompleted && !s.HasPlannedTasks {
						return false
					}
				}
			}
			return true
		},
		genGoals(),
	))

	properties.Property("current streak is bounded by the days walked", prop.ForAll(
		func(goals []model.Goal, dayIdx int) bool {
			today := model.Weekdays[dayIdx]
			streak := CurrentStreak(DailyCompletionStatsWithRepeats(goals), today)
			return streak >= 0 && streak <= dayIdx+1
		},
		genGoals(),
		gen.IntRange(0, 6),
	))

	properties.Property("daily streak is bounded by snapshot count", prop.ForAll(
		func(counts []int) bool {
			now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
			snapshots := make([]model.DailySnapshot, len(counts))
			for i, c := range counts {
				snapshots[i] = model.DailySnapshot{Date: now.AddDate(0, 0, -i), TasksCompleted: c}
			}
			streak := DailyStreak(snapshots, now)
			if streak < 0 || streak > len(counts) {
				return false
			}
			// every counted day had completions, and the next one did not
			for i := 0; i < streak; i++ {
				if counts[i] <= 0 {
					return false
				}
			}
			return streak == len(counts) || counts[streak] <= 0
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

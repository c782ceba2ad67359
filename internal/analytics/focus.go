package analytics

import (
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
)

// FocusTimeStatsFor sums planned and completed minutes for a week of goals.
// A repeating task plans its estTime once per scheduled day; time spent is
// already a weekly total and counts once, only for completed tasks.
func FocusTimeStatsFor(goals []model.Goal) model.FocusTimeStats {
	var stats model.FocusTimeStats
	for _, goal := range goals {
		for _, task := range goal.Tasks {
			occurrences := len(task.ScheduledDays())
			if occurrences == 0 {
				// an unscheduled one-off task is still planned work
				occurrences = 1
			}
			stats.PlannedMinutes += task.EstTime * occurrences
			if task.Completed {
				stats.CompletedMinutes += task.SpentMinutes()
			}
		}
	}
	return stats
}

// FocusTimeStatsForTasks applies the same rule to a flat, day-scoped list
// such as today's tasks, where every task is a single occurrence.
func FocusTimeStatsForTasks(tasks []model.Task) model.FocusTimeStats {
	var stats model.FocusTimeStats
	for _, task := range tasks {
		stats.PlannedMinutes += task.EstTime
		if task.Completed {
			stats.CompletedMinutes += task.SpentMinutes()
		}
	}
	return stats
}

// Summary bundles every dashboard metric for one week
type Summary struct {
	Week              string                           `json:"week"`
	Today             model.Weekday                    `json:"today"`
	CompletionRate    int                              `json:"completionRate"`
	ProductivityScore int                              `json:"productivityScore"`
	WeekFocus         model.FocusTimeStats             `json:"weekFocus"`
	TodayFocus        model.FocusTimeStats             `json:"todayFocus"`
	DayStats          map[model.Weekday]model.DayStats `json:"dayStats"`
	CurrentStreak     int                              `json:"currentStreak"`
	DailyStreak       int                              `json:"dailyStreak"`
	TotalGoals        int                              `json:"totalGoals"`
	TotalTasks        int                              `json:"totalTasks"`
}

// Summarize computes the dashboard for the week containing now.
// includeRepeating selects which day-stats rule feeds CurrentStreak.
func Summarize(goals []model.Goal, snapshots []model.DailySnapshot, now time.Time, includeRepeating bool) Summary {
	today := model.WeekdayOf(now)

	dayStats := DailyCompletionStats(goals)
	if includeRepeating {
		dayStats = DailyCompletionStatsWithRepeats(goals)
	}

	return Summary{
		Week:              model.FormatWeek(model.WeekStart(now)),
		Today:             today,
		CompletionRate:    WeeklyCompletionRate(goals),
		ProductivityScore: ProductivityScore(goals),
		WeekFocus:         FocusTimeStatsFor(goals),
		TodayFocus:        FocusTimeStatsForTasks(TasksForDay(goals, today)),
		DayStats:          dayStats,
		CurrentStreak:     CurrentStreak(dayStats, today),
		DailyStreak:       DailyStreak(snapshots, now),
		TotalGoals:        len(goals),
		TotalTasks:        model.CountTasks(goals),
	}
}

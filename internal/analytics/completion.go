// Package analytics computes completion rates, streaks and focus-time
// aggregates over a week of goals. Every function is pure: the caller
// supplies "now" and the data, nothing here reads a clock or does I/O.
package analytics

import (
	"math"

	"github.com/cleberrangel/journey-goals-api/internal/model"
)

// WeeklyCompletionRate returns the percentage (0-100) of completed tasks
// across all goals. Each task counts once regardless of repeat type.
func WeeklyCompletionRate(goals []model.Goal) int {
	total, completed := 0, 0
	for _, goal := range goals {
		for _, task := range goal.Tasks {
			total++
			if task.Completed {
				completed++
			}
		}
	}
	return percentage(completed, total)
}

// ProductivityScore backs the "productivity" dashboard tile. It shares the
// completion rate formula so both tiles always agree.
func ProductivityScore(goals []model.Goal) int {
	return WeeklyCompletionRate(goals)
}

// percentage rounds half up, 0 when total is 0
func percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(total)*100 + 0.5))
}

// DailyCompletionStats reports, for each weekday, whether tasks were planned
// and whether all of them are done. Only non-repeating tasks are considered.
func DailyCompletionStats(goals []model.Goal) map[model.Weekday]model.DayStats {
	return dailyStats(goals, false)
}

// DailyCompletionStatsWithRepeats is DailyCompletionStats with daily and
// alternate tasks counted on every day they are scheduled.
func DailyCompletionStatsWithRepeats(goals []model.Goal) map[model.Weekday]model.DayStats {
	return dailyStats(goals, true)
}

func dailyStats(goals []model.Goal, includeRepeating bool) map[model.Weekday]model.DayStats {
	planned := make(map[model.Weekday]int, len(model.Weekdays))
	done := make(map[model.Weekday]int, len(model.Weekdays))

	for _, goal := range goals {
		for _, task := range goal.Tasks {
			if task.IsRepeating() && !includeRepeating {
				continue
			}
			for _, day := range task.ScheduledDays() {
				planned[day]++
				if task.Completed {
					done[day]++
				}
			}
		}
	}

	stats := make(map[model.Weekday]model.DayStats, len(model.Weekdays))
	for _, day := range model.Weekdays {
		has := planned[day] > 0
		stats[day] = model.DayStats{
			HasPlannedTasks: has,
			AllCompleted:    has && done[day] == planned[day],
		}
	}
	return stats
}

// TasksForDay returns the tasks scheduled on the given weekday, repeating
// tasks included, in goal then task order.
func TasksForDay(goals []model.Goal, day model.Weekday) []model.Task {
	var tasks []model.Task
	for _, goal := range goals {
		for _, task := range goal.Tasks {
			for _, d := range task.ScheduledDays() {
				if d == day {
					tasks = append(tasks, task)
					break
				}
			}
		}
	}
	return tasks
}

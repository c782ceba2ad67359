package analytics

import (
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/model"
)

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// DailyStreak counts consecutive calendar days, ending today, on which at
// least one task was completed. Snapshots are matched by calendar day in
// now's location, so their order does not matter and a missing day breaks
// the streak. Several snapshots for the same day are summed.
func DailyStreak(snapshots []model.DailySnapshot, now time.Time) int {
	if len(snapshots) == 0 {
		return 0
	}

	loc := now.Location()
	completedByDay := make(map[dayKey]int, len(snapshots))
	for _, s := range snapshots {
		if s.Date.IsZero() {
			continue
		}
		completedByDay[keyOf(s.Date.In(loc))] += s.TasksCompleted
	}

	today := model.Midnight(now)
	streak := 0
	for i := 0; i <= len(completedByDay); i++ {
		// AddDate keeps calendar days correct across DST changes
		if completedByDay[keyOf(today.AddDate(0, 0, -i))] <= 0 {
			break
		}
		streak++
	}
	return streak
}

// CurrentStreak walks from today back to Monday of the same week. Fully
// completed days extend the streak, a planned day with open tasks ends it
// and days without planned tasks are skipped. It never wraps into the
// previous week.
func CurrentStreak(dayStats map[model.Weekday]model.DayStats, today model.Weekday) int {
	start := today.Index()
	if start < 0 {
		return 0
	}

	streak := 0
	for i := start; i >= 0; i-- {
		stats := dayStats[model.Weekdays[i]]
		if !stats.HasPlannedTasks {
			continue
		}
		if !stats.AllCompleted {
			break
		}
		streak++
	}
	return streak
}

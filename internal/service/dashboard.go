package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/analytics"
	"github.com/cleberrangel/journey-goals-api/internal/cache"
	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/metrics"
	"github.com/cleberrangel/journey-goals-api/internal/model"
)

// DefaultStreakWindowDays limits how far back snapshots are read for the
// daily streak
const DefaultStreakWindowDays = 90

// DashboardService computes the analytics summary of a user's week and
// caches it until the user's goals change
type DashboardService struct {
	store            GoalStore
	cache            *cache.Cache[analytics.Summary]
	includeRepeating bool
	windowDays       int

	// generations counts invalidations per user; a summary computed before
	// the latest one is not cached
	mu          sync.Mutex
	generations map[string]uint64
}

// NewDashboardService cria o serviço de dashboard
func NewDashboardService(store GoalStore, ttl time.Duration, includeRepeating bool) *DashboardService {
	return &DashboardService{
		store:            store,
		cache:            cache.New[analytics.Summary](ttl),
		includeRepeating: includeRepeating,
		windowDays:       DefaultStreakWindowDays,
		generations:      make(map[string]uint64),
	}
}

// Summary returns the dashboard of week as seen on day at. When at falls
// outside the week, the week's Sunday is used so past weeks read as closed.
func (s *DashboardService) Summary(ctx context.Context, userID string, week, at time.Time) (analytics.Summary, error) {
	if userID == "" {
		return analytics.Summary{}, ErrMissingUser
	}
	at = ClampToWeek(week, at)

	key := cacheKey(userID, week, at)
	if summary, ok := s.cache.Get(key); ok {
		metrics.Get().IncrementDashboard(true)
		return summary, nil
	}

	generation := s.generation(userID)

	goals, err := s.store.ListGoals(ctx, userID, week)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("erro ao carregar metas: %w", err)
	}

	day := model.Midnight(at)
	snapshots, err := s.store.ListSnapshots(ctx, userID, day.AddDate(0, 0, -s.windowDays), day)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("erro ao carregar snapshots: %w", err)
	}

	summary := analytics.Summarize(goals, snapshots, at, s.includeRepeating)
	s.cacheIfCurrent(userID, generation, key, summary)
	metrics.Get().IncrementDashboard(false)

	logger.Get(ctx).Debug().
		Str("week", summary.Week).
		Int("completion_rate", summary.CompletionRate).
		Int("daily_streak", summary.DailyStreak).
		Msg("Dashboard calculado")

	return summary, nil
}

// Invalidate drops every cached summary of the user
func (s *DashboardService) Invalidate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	s.cache.InvalidatePrefix(userID + "|")
}

func (s *DashboardService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

func (s *DashboardService) cacheIfCurrent(userID string, generation uint64, key string, summary analytics.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[userID] != generation {
		return
	}
	s.cache.Set(key, summary)
}

// CacheStats exposes hit and miss counters of the summary cache
func (s *DashboardService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Close stops the cache janitor
func (s *DashboardService) Close() {
	s.cache.Stop()
}

// ClampToWeek keeps at inside [week, week+7d); outside values become the
// week's Sunday at noon
func ClampToWeek(week, at time.Time) time.Time {
	end := week.AddDate(0, 0, 7)
	if !at.Before(week) && at.Before(end) {
		return at
	}
	return week.AddDate(0, 0, 6).Add(12 * time.Hour)
}

func cacheKey(userID string, week, at time.Time) string {
	return userID + "|" + model.FormatWeek(week) + "|" + at.Format(model.WeekLayout)
}

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// TestCacheConcurrentAccess tests thread safety of cache operations
func TestCacheConcurrentAccess(t *testing.T) {
	cache := New[int](5 * time.Minute)
	defer cache.Stop()

	numGoroutines := 10
	numOperations := 100
	var wg sync.WaitGroup

	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for i := 0; i < numOperations; i++ {
				key := fmt.Sprintf("user:%d:week:%d", goroutineID, (i/2)%10)
				if i%2 == 0 {
					cache.Set(key, i)
				} else {
					cache.Get(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if cache.Size() != numGoroutines*10 {
		t.Errorf("Expected %d items, got %d", numGoroutines*10, cache.Size())
	}
}

// TestCacheInvalidatePrefix tests that only the user's own entries are dropped
func TestCacheInvalidatePrefix(t *testing.T) {
	cache := New[string](5 * time.Minute)
	defer cache.Stop()

	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("dashboard:u1:%d", i), "a")
		cache.Set(fmt.Sprintf("dashboard:u10:%d", i), "b")
	}

	cache.InvalidatePrefix("dashboard:u1:")

	if cache.Size() != 5 {
		t.Errorf("Expected 5 items after invalidation, got %d", cache.Size())
	}
	if _, found := cache.Get("dashboard:u10:0"); !found {
		t.Error("Entries of other users should survive")
	}
	if _, found := cache.Get("dashboard:u1:0"); found {
		t.Error("Entry should have been invalidated")
	}
}

// TestCacheTTLExpiration tests that items expire without sleeping on the clock
func TestCacheTTLExpiration(t *testing.T) {
	cache := New[string](time.Minute)
	defer cache.Stop()

	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("long", "x")
	cache.SetWithTTL("short", "y", 10*time.Second)

	now = now.Add(30 * time.Second)
	if _, found := cache.Get("short"); found {
		t.Error("Short TTL item should have expired")
	}
	if v, found := cache.Get("long"); !found || v != "x" {
		t.Error("Default TTL item should still exist")
	}

	cache.removeExpired()
	if cache.Size() != 1 {
		t.Errorf("Expected expired item to be removed, size %d", cache.Size())
	}
}

func TestCacheStats(t *testing.T) {
	cache := New[int](time.Minute)
	defer cache.Stop()
	defer cache.Stop()

	cache.Set("a", 1)
	cache.Get("a")
	cache.Get("a")
	cache.Get("b")

	stats := cache.Stats()
	if stats.HitCount != 2 || stats.MissCount != 1 || stats.ItemCount != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Error("Clear should empty the cache")
	}
}

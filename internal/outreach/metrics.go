package outreach

import (
	"context"
	"sync"

	"github.com/planivia/outreach-insights/internal/pkg/logger"
	"github.com/planivia/outreach-insights/internal/store"
)

// Aggregator reduces the activity log into overall and per-category
// statistics. Snapshots are always recomputed from scratch; there is no
// incremental state to drift.
type Aggregator struct {
	store    store.Store
	recorder *Recorder
	mu       sync.Mutex
}

// NewAggregator creates an Aggregator over the given store and recorder.
func NewAggregator(s store.Store, recorder *Recorder) *Aggregator {
	return &Aggregator{store: s, recorder: recorder}
}

// responseRate returns responded/total as a percentage, 0 for an empty total.
func responseRate(responded, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(responded) / float64(total) * 100
}

// meanResponseTime averages ResponseTime over responded activities that
// carry a value; 0 when none do.
func meanResponseTime(activities []ActivityRecord) float64 {
	var sum float64
	var count int
	for _, a := range activities {
		if a.ResponseReceived && a.ResponseTime != nil {
			sum += *a.ResponseTime
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// UpdateOverallMetrics recomputes the snapshot from the full activity log,
// persists it and returns it.
func (a *Aggregator) UpdateOverallMetrics(ctx context.Context) MetricsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	activities := a.recorder.GetActivities(ctx, ActivityFilter{})

	snapshot := MetricsSnapshot{
		TotalEmails:   len(activities),
		CategoryStats: make(map[string]CategoryStat),
		UpdatedAt:     a.recorder.now(),
	}

	byCategory := make(map[string][]ActivityRecord)
	for _, act := range activities {
		if act.ResponseReceived {
			snapshot.TotalResponses++
		}
		byCategory[act.TemplateCategory] = append(byCategory[act.TemplateCategory], act)
	}

	snapshot.ResponseRate = responseRate(snapshot.TotalResponses, snapshot.TotalEmails)
	snapshot.AverageResponseTime = meanResponseTime(activities)

	for category, group := range byCategory {
		responded := 0
		for _, act := range group {
			if act.ResponseReceived {
				responded++
			}
		}
		snapshot.CategoryStats[category] = CategoryStat{
			Total:               len(group),
			Responded:           responded,
			AverageResponseTime: meanResponseTime(group),
		}
	}

	if err := a.store.Set(ctx, store.KeyMetrics, snapshot); err != nil {
		logger.Error("failed to persist metrics snapshot", "error", err)
	}
	return snapshot
}

// GetMetrics returns the cached snapshot, computing one when the cache is
// empty. Callers needing freshness must call UpdateOverallMetrics.
func (a *Aggregator) GetMetrics(ctx context.Context) MetricsSnapshot {
	var cached MetricsSnapshot
	found, err := a.store.Get(ctx, store.KeyMetrics, &cached)
	if err != nil {
		logger.Error("failed to load metrics cache", "error", err)
	}
	if found && err == nil {
		if cached.CategoryStats == nil {
			cached.CategoryStats = make(map[string]CategoryStat)
		}
		return cached
	}
	return a.UpdateOverallMetrics(ctx)
}

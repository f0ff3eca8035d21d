package outreach

import (
	"context"

	"github.com/google/uuid"

	"github.com/planivia/outreach-insights/internal/pkg/logger"
	"github.com/planivia/outreach-insights/internal/store"
)

// appendHistory records a generated bundle for audit, evicting the oldest
// entries beyond the configured cap.
func (e *Engine) appendHistory(ctx context.Context, category, searchQuery string, rec Recommendation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.loadHistory(ctx)
	entries = append(entries, HistoryEntry{
		ID:              uuid.New().String(),
		Category:        category,
		SearchQuery:     searchQuery,
		Recommendations: rec,
		GeneratedAt:     e.now(),
	})
	if len(entries) > e.historyLimit {
		entries = entries[len(entries)-e.historyLimit:]
	}

	if err := e.store.Set(ctx, store.KeyHistory, entries); err != nil {
		logger.Error("failed to persist recommendation history", "error", err)
	}
}

func (e *Engine) loadHistory(ctx context.Context) []HistoryEntry {
	var entries []HistoryEntry
	if _, err := e.store.Get(ctx, store.KeyHistory, &entries); err != nil {
		logger.Error("failed to load recommendation history", "error", err)
		return nil
	}
	return entries
}

// GetRecommendationsHistory returns the audit trail, oldest first.
func (e *Engine) GetRecommendationsHistory(ctx context.Context) []HistoryEntry {
	entries := e.loadHistory(ctx)
	if entries == nil {
		return []HistoryEntry{}
	}
	return entries
}

// MarkRecommendationAsApplied flags a history entry as applied to a draft.
// Returns false when the id is unknown; the history is left untouched.
func (e *Engine) MarkRecommendationAsApplied(ctx context.Context, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.loadHistory(ctx)
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		now := e.now()
		entries[i].Applied = true
		entries[i].AppliedAt = &now
		if err := e.store.Set(ctx, store.KeyHistory, entries); err != nil {
			logger.Error("failed to persist applied flag", "error", err, "recommendation_id", id)
			return false
		}
		return true
	}
	return false
}

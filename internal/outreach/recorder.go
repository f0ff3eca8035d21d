package outreach

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planivia/outreach-insights/internal/pkg/logger"
	"github.com/planivia/outreach-insights/internal/store"
)

// Recorder creates and mutates individual outreach activity records.
// Writes are full read-modify-write cycles over the activity log; the mutex
// keeps concurrent writers from silently overwriting each other.
type Recorder struct {
	store store.Store
	mu    sync.Mutex
	now   func() time.Time
}

// NewRecorder creates a Recorder over the given store.
func NewRecorder(s store.Store) *Recorder {
	return &Recorder{store: s, now: time.Now}
}

// loadActivities reads the activity log. Store failures are logged and
// treated as an empty log, never propagated.
func (r *Recorder) loadActivities(ctx context.Context) []ActivityRecord {
	var activities []ActivityRecord
	found, err := r.store.Get(ctx, store.KeyActivities, &activities)
	if err != nil {
		logger.Error("failed to load activity log", "error", err)
		return nil
	}
	if !found {
		return nil
	}
	return activities
}

// RecordActivity builds an ActivityRecord with defaults, assigns a fresh id
// and appends it to the activity log. Returns the id, or "" when persistence
// fails (logged, not raised).
func (r *Recorder) RecordActivity(ctx context.Context, opts ActivityOptions) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	category := opts.TemplateCategory
	if category == "" {
		category = DefaultCategory
	}

	record := ActivityRecord{
		ID:               uuid.New().String(),
		ProviderName:     opts.ProviderName,
		TemplateCategory: category,
		WasCustomized:    opts.WasCustomized,
		Timestamp:        r.now(),
		Status:           StatusSent,
		ResponseReceived: false,
		EmailID:          opts.EmailID,
	}

	activities := append(r.loadActivities(ctx), record)
	if err := r.store.Set(ctx, store.KeyActivities, activities); err != nil {
		logger.Error("failed to persist activity", "error", err, "provider", opts.ProviderName)
		return ""
	}

	logger.Debug("activity recorded", "activity_id", record.ID, "category", category)
	return record.ID
}

// UpdateWithResponse marks the activity as responded, computing the reply
// latency in floating-point hours. Returns false when the id is unknown or
// the write fails.
func (r *Recorder) UpdateWithResponse(ctx context.Context, activityID string, resp ResponseData) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	activities := r.loadActivities(ctx)
	idx := -1
	for i := range activities {
		if activities[i].ID == activityID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	hours := r.now().Sub(activities[idx].Timestamp).Hours()
	activities[idx].ResponseTime = &hours
	activities[idx].ResponseReceived = true
	activities[idx].Status = StatusResponded
	if resp.EmailID != "" {
		activities[idx].EmailID = resp.EmailID
	}
	if resp.EffectivenessScore != nil {
		activities[idx].EffectivenessScore = resp.EffectivenessScore
	}

	if err := r.store.Set(ctx, store.KeyActivities, activities); err != nil {
		logger.Error("failed to persist response update", "error", err, "activity_id", activityID)
		return false
	}
	return true
}

// GetActivities returns activities matching the filter. An empty filter
// returns the whole log. This is a pure read.
func (r *Recorder) GetActivities(ctx context.Context, filter ActivityFilter) []ActivityRecord {
	activities := r.loadActivities(ctx)

	result := make([]ActivityRecord, 0, len(activities))
	for _, a := range activities {
		if filter.Category != "" && a.TemplateCategory != filter.Category {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Responded != nil && a.ResponseReceived != *filter.Responded {
			continue
		}
		if filter.Customized != nil && a.WasCustomized != *filter.Customized {
			continue
		}
		if filter.ProviderName != "" &&
			!strings.Contains(strings.ToLower(a.ProviderName), strings.ToLower(filter.ProviderName)) {
			continue
		}
		result = append(result, a)
	}
	return result
}

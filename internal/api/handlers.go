package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/planivia/outreach-insights/internal/outreach"
	"github.com/planivia/outreach-insights/internal/pkg/httputil"
)

// Handlers provides HTTP handlers for the outreach analytics API.
type Handlers struct {
	recorder   *outreach.Recorder
	aggregator *outreach.Aggregator
	comparator *outreach.Comparator
	engine     *outreach.Engine
}

// NewHandlers creates a Handlers instance over the assembled engine parts.
func NewHandlers(recorder *outreach.Recorder, aggregator *outreach.Aggregator, comparator *outreach.Comparator, engine *outreach.Engine) *Handlers {
	return &Handlers{
		recorder:   recorder,
		aggregator: aggregator,
		comparator: comparator,
		engine:     engine,
	}
}

// RegisterRoutes registers the outreach analytics routes.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/outreach", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)

		r.Post("/activities", h.HandleRecordActivity)
		r.Get("/activities", h.HandleGetActivities)
		r.Post("/activities/{id}/response", h.HandleRecordResponse)

		r.Get("/metrics", h.HandleGetMetrics)
		r.Post("/metrics/refresh", h.HandleRefreshMetrics)

		r.Get("/comparison", h.HandleGetComparison)
		r.Get("/timeslots", h.HandleGetTimeSlots)

		r.Get("/recommendations", h.HandleGetRecommendations)
		r.Get("/recommendations/history", h.HandleGetRecommendationHistory)
		r.Post("/recommendations/{id}/applied", h.HandleMarkApplied)
	})
}

// HandleHealth reports service liveness.
// GET /api/outreach/health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"status":    "healthy",
		"service":   "outreach-insights",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleRecordActivity records a new outbound supplier email.
// POST /api/outreach/activities
func (h *Handlers) HandleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var opts outreach.ActivityOptions
	if !httputil.Decode(w, r, &opts) {
		return
	}

	if opts.ProviderName == "" {
		httputil.BadRequest(w, "providerName is required")
		return
	}

	id := h.recorder.RecordActivity(r.Context(), opts)
	if id == "" {
		httputil.Error(w, http.StatusInternalServerError, "failed to record activity")
		return
	}

	httputil.Created(w, map[string]string{"id": id})
}

// HandleRecordResponse marks an activity as responded.
// POST /api/outreach/activities/{id}/response
func (h *Handlers) HandleRecordResponse(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "id")
	if activityID == "" {
		httputil.BadRequest(w, "activity id is required")
		return
	}

	var resp outreach.ResponseData
	if r.ContentLength > 0 {
		if !httputil.Decode(w, r, &resp) {
			return
		}
	}

	if !h.recorder.UpdateWithResponse(r.Context(), activityID, resp) {
		httputil.NotFound(w, "activity not found")
		return
	}

	httputil.OK(w, map[string]string{"id": activityID, "status": "responded"})
}

// HandleGetActivities lists activities with optional query-param filters.
// GET /api/outreach/activities?category=&status=&responded=&customized=&provider=
func (h *Handlers) HandleGetActivities(w http.ResponseWriter, r *http.Request) {
	filter := outreach.ActivityFilter{
		Category:     r.URL.Query().Get("category"),
		Status:       outreach.ActivityStatus(r.URL.Query().Get("status")),
		ProviderName: r.URL.Query().Get("provider"),
	}

	var err error
	if filter.Responded, err = parseBoolParam(r, "responded"); err != nil {
		httputil.BadRequest(w, "responded must be true or false")
		return
	}
	if filter.Customized, err = parseBoolParam(r, "customized"); err != nil {
		httputil.BadRequest(w, "customized must be true or false")
		return
	}

	activities := h.recorder.GetActivities(r.Context(), filter)

	httputil.OK(w, map[string]interface{}{
		"activities": activities,
		"total":      len(activities),
	})
}

// HandleGetMetrics returns the cached aggregate metrics.
// GET /api/outreach/metrics
func (h *Handlers) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.aggregator.GetMetrics(r.Context()))
}

// HandleRefreshMetrics recomputes the aggregate metrics from the full log.
// POST /api/outreach/metrics/refresh
func (h *Handlers) HandleRefreshMetrics(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.aggregator.UpdateOverallMetrics(r.Context()))
}

// HandleGetComparison contrasts assisted outreach with the manual email log.
// GET /api/outreach/comparison
func (h *Handlers) HandleGetComparison(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.comparator.GetComparisonData(r.Context()))
}

// HandleGetTimeSlots returns the per-slot send/response breakdown.
// GET /api/outreach/timeslots
func (h *Handlers) HandleGetTimeSlots(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"slots": h.engine.TimeSlotBreakdown(r.Context()),
	})
}

// HandleGetRecommendations generates a fresh recommendation bundle.
// GET /api/outreach/recommendations?category=&q=
func (h *Handlers) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	searchQuery := r.URL.Query().Get("q")

	httputil.OK(w, h.engine.GenerateRecommendations(r.Context(), category, searchQuery))
}

// HandleGetRecommendationHistory returns the recommendation audit trail,
// optionally filtered by applied state.
// GET /api/outreach/recommendations/history?applied=
func (h *Handlers) HandleGetRecommendationHistory(w http.ResponseWriter, r *http.Request) {
	applied, err := parseBoolParam(r, "applied")
	if err != nil {
		httputil.BadRequest(w, "applied must be true or false")
		return
	}

	history := h.engine.GetRecommendationsHistory(r.Context())
	if applied != nil {
		filtered := make([]outreach.HistoryEntry, 0, len(history))
		for _, entry := range history {
			if entry.Applied == *applied {
				filtered = append(filtered, entry)
			}
		}
		history = filtered
	}

	httputil.OK(w, map[string]interface{}{
		"history": history,
		"total":   len(history),
	})
}

// HandleMarkApplied flags a history entry as applied to a draft.
// POST /api/outreach/recommendations/{id}/applied
func (h *Handlers) HandleMarkApplied(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.BadRequest(w, "recommendation id is required")
		return
	}

	if !h.engine.MarkRecommendationAsApplied(r.Context(), id) {
		httputil.NotFound(w, "recommendation not found")
		return
	}

	httputil.OK(w, map[string]interface{}{"id": id, "applied": true})
}

// parseBoolParam reads an optional boolean query parameter.
func parseBoolParam(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

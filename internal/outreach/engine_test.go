package outreach

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planivia/outreach-insights/internal/store"
)

func newTestEngine(t *testing.T, activities []ActivityRecord) (*Engine, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	if activities != nil {
		seedActivities(t, s, activities)
	}
	recorder := NewRecorder(s)
	aggregator := NewAggregator(s, recorder)
	return NewEngine(s, recorder, aggregator, 50), s
}

// activityAt builds an activity sent at the given local time.
func activityAt(ts time.Time, responded bool, category string, customized bool) ActivityRecord {
	a := ActivityRecord{
		ID:               ts.Format("20060102150405.000000000"),
		TemplateCategory: category,
		WasCustomized:    customized,
		Timestamp:        ts,
		Status:           StatusSent,
	}
	if responded {
		hours := 12.0
		a.Status = StatusResponded
		a.ResponseReceived = true
		a.ResponseTime = &hours
	}
	return a
}

func TestGenerateRecommendationsEmptyLogMatchesDefaults(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	rec := engine.GenerateRecommendations(context.Background(), "", "")
	assert.Equal(t, defaultRecommendations(), rec)
}

func TestGenerateRecommendationsFixtureScenario(t *testing.T) {
	day1 := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	// Five sends across morning, afternoon and evening; three replies.
	activities := []ActivityRecord{
		activityAt(day1.Add(10*time.Hour+30*time.Minute), true, "general", false),
		activityAt(day1.Add(14*time.Hour+30*time.Minute), true, "general", false),
		activityAt(day1.Add(18*time.Hour+30*time.Minute), false, "general", false),
		activityAt(day2.Add(10*time.Hour+30*time.Minute), false, "general", false),
		activityAt(day2.Add(14*time.Hour+30*time.Minute), true, "general", false),
	}
	engine, _ := newTestEngine(t, activities)

	rec := engine.GenerateRecommendations(context.Background(), "", "")

	// No slot reaches the sample floor, so the default wins
	assert.Equal(t, SlotMorning, rec.BestTimeToSend.BestTimeSlot)
	assert.False(t, rec.BestTimeToSend.HasSufficientData)

	// Exactly five activities sits on the >=5 base tier
	assert.Equal(t, 40, rec.ConfidenceScore)
}

func TestBestTimeToSendPicksEligibleSlot(t *testing.T) {
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	var activities []ActivityRecord

	// Morning: 5 sends, 1 reply (20%)
	for i := 0; i < 5; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute+9*time.Hour), i == 0, "general", false))
	}
	// Evening: 6 sends, 4 replies (66.7%)
	for i := 0; i < 6; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute+17*time.Hour), i < 4, "general", false))
	}
	// Night: 3 sends, all replied, but below the floor
	for i := 0; i < 3; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute+22*time.Hour), true, "general", false))
	}

	timing := bestTimeToSend(activities)
	assert.Equal(t, SlotEvening, timing.BestTimeSlot)
	assert.Equal(t, "tarde (16-20h)", timing.BestTimeSlotName)
	assert.True(t, timing.HasSufficientData)
	assert.InDelta(t, 66.67, timing.BestRate, 0.01)
}

func TestSlotForWraparound(t *testing.T) {
	assert.Equal(t, SlotNight, slotFor(23))
	assert.Equal(t, SlotNight, slotFor(0))
	assert.Equal(t, SlotNight, slotFor(7))
	assert.Equal(t, SlotMorning, slotFor(8))
	assert.Equal(t, SlotAfternoon, slotFor(12))
	assert.Equal(t, SlotEvening, slotFor(19))
	assert.Equal(t, SlotNight, slotFor(20))
}

func TestTemplateRecommendationsSampleFloor(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	// One-shot 100% category must not win over a grounded one
	activities := []ActivityRecord{
		activityAt(day, true, "flores", false),
	}
	for i := 0; i < 4; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i+1)*time.Minute), i < 2, "catering", false))
	}

	rec := templateRecommendations(activities, "")
	assert.Equal(t, "catering", rec.BestOverallTemplate)
	assert.InDelta(t, 50.0, rec.BestOverallResponseRate, 0.001)
	assert.True(t, rec.HasSufficientData)
}

func TestTemplateRecommendationsInsufficientData(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	activities := []ActivityRecord{
		activityAt(day, true, "flores", false),
		activityAt(day.Add(time.Minute), true, "música", false),
	}

	rec := templateRecommendations(activities, "flores")
	assert.Equal(t, DefaultCategory, rec.BestOverallTemplate)
	assert.False(t, rec.HasSufficientData)

	// The requested category still gets its own stats
	require.NotNil(t, rec.CategorySpecificTemplate)
	assert.Equal(t, "flores", rec.CategorySpecificTemplate.Category)
	assert.InDelta(t, 100.0, rec.CategorySpecificTemplate.ResponseRate, 0.001)
}

func TestCustomizationImpact(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	var activities []ActivityRecord

	// Customized: 5 sends, 4 replies (80%)
	for i := 0; i < 5; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute), i < 4, "general", true))
	}
	// Non-customized: 5 sends, 2 replies (40%)
	for i := 0; i < 5; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i+10)*time.Minute), i < 2, "general", false))
	}

	impact := customizationImpact(activities)
	assert.InDelta(t, 80.0, impact.Customized.Rate, 0.001)
	assert.InDelta(t, 40.0, impact.NonCustomized.Rate, 0.001)
	assert.InDelta(t, 40.0, impact.Impact, 0.001)
	assert.True(t, impact.RecommendCustomization)
	assert.True(t, impact.HasSufficientData)
}

func TestCustomizationImpactNegative(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	var activities []ActivityRecord

	for i := 0; i < 5; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute), i < 1, "general", true))
	}
	for i := 0; i < 5; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i+10)*time.Minute), i < 4, "general", false))
	}

	impact := customizationImpact(activities)
	assert.InDelta(t, -60.0, impact.Impact, 0.001)
	assert.False(t, impact.RecommendCustomization)
	assert.True(t, impact.HasSufficientData)
}

func TestCustomizationImpactInsufficientData(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	activities := []ActivityRecord{
		activityAt(day, true, "general", true),
		activityAt(day.Add(time.Minute), false, "general", false),
	}

	impact := customizationImpact(activities)
	assert.False(t, impact.HasSufficientData)
	assert.True(t, impact.RecommendCustomization)
	// Impact is still the rounded rate difference when both groups exist
	assert.InDelta(t, 100.0, impact.Impact, 0.001)
}

func TestResponseTimeExpectations(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	hours := []float64{2, 10, 24, 50}
	var activities []ActivityRecord
	for i, h := range hours {
		a := activityAt(day.Add(time.Duration(i)*time.Minute), true, "catering", false)
		v := h
		a.ResponseTime = &v
		activities = append(activities, a)
	}

	expectations := responseTimeExpectations(activities, "catering")
	assert.Equal(t, "21.5", expectations.AverageTime)
	assert.InDelta(t, 17.0, expectations.MedianTime, 0.001)
	assert.InDelta(t, 2.0, expectations.FastestResponse, 0.001)
	assert.InDelta(t, 50.0, expectations.SlowestResponse, 0.001)
	assert.True(t, expectations.HasSufficientData)
	require.NotNil(t, expectations.CategoryAverageTime)
	assert.InDelta(t, 21.5, *expectations.CategoryAverageTime, 0.001)
}

func TestResponseTimeExpectationsFallback(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	activities := []ActivityRecord{activityAt(day, false, "general", false)}

	expectations := responseTimeExpectations(activities, "")
	assert.Equal(t, "24-48", expectations.AverageTime)
	assert.False(t, expectations.HasSufficientData)
	assert.Nil(t, expectations.CategoryAverageTime)
}

func TestCategoryAdviceGating(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	// Only one reply in fotografía: generic fallback, insufficient data
	activities := []ActivityRecord{
		activityAt(day, true, "fotografía", false),
		activityAt(day.Add(time.Minute), false, "fotografía", false),
	}
	advice := categoryAdviceFor(activities, "fotografía")
	assert.False(t, advice.HasSufficientData)
	assert.Equal(t, genericAdvice, advice.Recommendations)
	assert.InDelta(t, 50.0, advice.ResponseRate, 0.001)

	// A second reply unlocks the curated list
	activities = append(activities, activityAt(day.Add(2*time.Minute), true, "fotografía", false))
	advice = categoryAdviceFor(activities, "fotografía")
	assert.True(t, advice.HasSufficientData)
	assert.Equal(t, categoryAdvice["fotografía"], advice.Recommendations)
}

func TestCategoryAdviceUnknownCategory(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	activities := []ActivityRecord{
		activityAt(day, true, "tartas", false),
		activityAt(day.Add(time.Minute), true, "tartas", false),
	}

	advice := categoryAdviceFor(activities, "tartas")
	assert.True(t, advice.HasSufficientData)
	assert.Equal(t, genericAdvice, advice.Recommendations)
}

func TestQueryAdviceScenario(t *testing.T) {
	advice := analyzeQuery("boda en Madrid el 10 de mayo")

	assert.True(t, advice.SearchContext.IncludesLocation)
	assert.True(t, advice.SearchContext.IncludesDate)
	assert.False(t, advice.SearchContext.IncludesBudget)
	assert.False(t, advice.SearchContext.IncludesSize)

	require.Len(t, advice.Recommendations, 2)
	for _, r := range advice.Recommendations {
		assert.NotContains(t, r, "ubicación")
		assert.NotContains(t, r, "fecha de la boda")
	}
}

func TestQueryAdviceCompleteQuery(t *testing.T) {
	advice := analyzeQuery("catering en Sevilla en octubre, presupuesto 8000 euros, 120 invitados")

	assert.True(t, advice.SearchContext.IncludesLocation)
	assert.True(t, advice.SearchContext.IncludesDate)
	assert.True(t, advice.SearchContext.IncludesBudget)
	assert.True(t, advice.SearchContext.IncludesSize)
	assert.Empty(t, advice.Recommendations)
}

func TestConfidenceScoreTiers(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	build := func(total, responded int) []ActivityRecord {
		var activities []ActivityRecord
		for i := 0; i < total; i++ {
			activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute), i < responded, "general", false))
		}
		return activities
	}

	assert.Equal(t, 20, confidenceScore(build(4, 2), ""))
	assert.Equal(t, 40, confidenceScore(build(5, 3), ""))
	assert.Equal(t, 60, confidenceScore(build(15, 7), ""))
	assert.Equal(t, 80, confidenceScore(build(30, 15), ""))
	assert.Equal(t, 100, confidenceScore(build(50, 25), ""))
}

func TestConfidenceScoreSkewPenalty(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	var activities []ActivityRecord
	for i := 0; i < 30; i++ {
		// 1 reply in 30 sends: under 10%, unrepresentative
		activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute), i == 0, "general", false))
	}
	assert.Equal(t, 72, confidenceScore(activities, "")) // 80 * 0.9
}

func TestConfidenceScoreCategoryMultiplier(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	var activities []ActivityRecord
	for i := 0; i < 30; i++ {
		category := "general"
		if i < 20 {
			category = "catering"
		}
		activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute), i%2 == 0, category, false))
	}

	// Base 80, rich category sample scales by 1.2, clamped at 96
	assert.Equal(t, 96, confidenceScore(activities, "catering"))

	// Category with almost no data takes the 0.8 haircut
	assert.Equal(t, 64, confidenceScore(activities, "flores"))
}

func TestConfidenceScoreBounds(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	var activities []ActivityRecord
	for i := 0; i < 60; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute), i < 30, "catering", false))
	}

	score := confidenceScore(activities, "catering")
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
	assert.Equal(t, 100, score) // 100 * 1.2 clamps to 100

	assert.Equal(t, 20, confidenceScore(nil, ""))
}

func TestGenerateRecommendationsWithCategoryAndQuery(t *testing.T) {
	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	var activities []ActivityRecord
	for i := 0; i < 6; i++ {
		activities = append(activities, activityAt(day.Add(time.Duration(i)*time.Minute), i < 3, "fotografía", false))
	}
	engine, _ := newTestEngine(t, activities)

	rec := engine.GenerateRecommendations(context.Background(), "fotografía", "fotógrafo para boda")

	require.NotNil(t, rec.CategorySpecific)
	assert.True(t, rec.CategorySpecific.HasSufficientData)
	assert.InDelta(t, 50.0, rec.CategorySpecific.ResponseRate, 0.001)

	require.NotNil(t, rec.QuerySpecific)
	assert.False(t, rec.QuerySpecific.SearchContext.IncludesLocation)
	assert.NotEmpty(t, rec.QuerySpecific.Recommendations)

	// Every bundle lands in the audit history
	history := engine.GetRecommendationsHistory(context.Background())
	require.Len(t, history, 1)
	assert.Equal(t, "fotografía", history[0].Category)
}

func TestGenerateRecommendationsStoreFailure(t *testing.T) {
	s := &failingStore{}
	recorder := NewRecorder(s)
	aggregator := NewAggregator(s, recorder)
	engine := NewEngine(s, recorder, aggregator, 50)

	// A dead store degrades to the default bundle, never an error
	rec := engine.GenerateRecommendations(context.Background(), "", "")
	assert.Equal(t, defaultRecommendations(), rec)
}

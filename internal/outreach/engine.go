package outreach

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/planivia/outreach-insights/internal/pkg/logger"
	"github.com/planivia/outreach-insights/internal/store"
)

// Sample-size floors gating each recommendation dimension.
const (
	minSlotSample          = 5 // sends a time slot needs before it can win
	minTemplateSample      = 3 // sends a category needs before it can be "best"
	minCustomizationSample = 5 // sends required in each customization group
	minCategoryResponded   = 2 // replies a category needs for curated advice
)

// Engine synthesizes the activity history into a send-strategy
// recommendation bundle with a confidence score.
type Engine struct {
	store        store.Store
	recorder     *Recorder
	aggregator   *Aggregator
	historyLimit int
	mu           sync.Mutex
	now          func() time.Time
}

// NewEngine creates an Engine. historyLimit caps the recommendation history;
// values <= 0 fall back to 50.
func NewEngine(s store.Store, recorder *Recorder, aggregator *Aggregator, historyLimit int) *Engine {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Engine{
		store:        s,
		recorder:     recorder,
		aggregator:   aggregator,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// GenerateRecommendations runs every dimension over the current activity
// log. Category and searchQuery are optional; empty strings disable their
// dimensions. Any failure inside the pipeline is caught and the caller
// receives the default bundle, never an error.
func (e *Engine) GenerateRecommendations(ctx context.Context, category, searchQuery string) (rec Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("recommendation pipeline failed", "panic", fmt.Sprintf("%v", r))
			rec = defaultRecommendations()
		}
	}()

	activities := e.recorder.GetActivities(ctx, ActivityFilter{})

	rec = Recommendation{
		BestTimeToSend:             bestTimeToSend(activities),
		SubjectLineRecommendations: subjectLineGuidance(),
		TemplateRecommendations:    templateRecommendations(activities, category),
		CustomizationImpact:        customizationImpact(activities),
		ResponseTimeExpectations:   responseTimeExpectations(activities, category),
		ConfidenceScore:            confidenceScore(activities, category),
	}
	if category != "" {
		rec.CategorySpecific = categoryAdviceFor(activities, category)
	}
	if searchQuery != "" {
		rec.QuerySpecific = analyzeQuery(searchQuery)
	}

	e.appendHistory(ctx, category, searchQuery, rec)
	return rec
}

// TimeSlotBreakdown exposes the raw per-slot statistics behind the timing
// recommendation.
func (e *Engine) TimeSlotBreakdown(ctx context.Context) []SlotStats {
	return slotBreakdown(e.recorder.GetActivities(ctx, ActivityFilter{}))
}

// slotOrder fixes iteration order so ties resolve deterministically.
var slotOrder = []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening, SlotNight}

func slotBreakdown(activities []ActivityRecord) []SlotStats {
	counts := make(map[TimeSlot]*SlotStats, len(slotOrder))
	for _, slot := range slotOrder {
		counts[slot] = &SlotStats{Slot: slot, SlotName: SlotName(slot)}
	}

	for _, a := range activities {
		stats := counts[slotFor(a.Timestamp.Hour())]
		stats.Sent++
		if a.ResponseReceived {
			stats.Responded++
		}
	}

	result := make([]SlotStats, 0, len(slotOrder))
	for _, slot := range slotOrder {
		stats := counts[slot]
		stats.Rate = responseRate(stats.Responded, stats.Sent)
		result = append(result, *stats)
	}
	return result
}

// bestTimeToSend picks the eligible slot with the highest response rate.
// Slots below the sample floor cannot win; with no eligible slot the
// recommendation defaults to morning.
func bestTimeToSend(activities []ActivityRecord) TimingRecommendation {
	best := TimingRecommendation{
		BestTimeSlot:     SlotMorning,
		BestTimeSlotName: SlotName(SlotMorning),
	}

	for _, stats := range slotBreakdown(activities) {
		if stats.Sent < minSlotSample {
			continue
		}
		if !best.HasSufficientData || stats.Rate > best.BestRate {
			best.BestTimeSlot = stats.Slot
			best.BestTimeSlotName = stats.SlotName
			best.BestRate = stats.Rate
			best.HasSufficientData = true
		}
	}
	return best
}

// templateRecommendations names the category whose template performs best,
// guarded by a minimum sample floor to avoid one-shot noise.
func templateRecommendations(activities []ActivityRecord, category string) TemplateRecommendation {
	rec := TemplateRecommendation{BestOverallTemplate: DefaultCategory}

	type groupStat struct {
		total     int
		responded int
	}
	groups := make(map[string]*groupStat)
	for _, a := range activities {
		g, ok := groups[a.TemplateCategory]
		if !ok {
			g = &groupStat{}
			groups[a.TemplateCategory] = g
		}
		g.total++
		if a.ResponseReceived {
			g.responded++
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g := groups[name]
		if g.total < minTemplateSample {
			continue
		}
		rate := responseRate(g.responded, g.total)
		if !rec.HasSufficientData || rate > rec.BestOverallResponseRate {
			rec.BestOverallTemplate = name
			rec.BestOverallResponseRate = rate
			rec.HasSufficientData = true
		}
	}

	if category != "" {
		if g, ok := groups[category]; ok {
			rec.CategorySpecificTemplate = &CategoryTemplate{
				Category:     category,
				ResponseRate: responseRate(g.responded, g.total),
			}
		}
	}
	return rec
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// customizationImpact splits the log into edited and raw-template sends and
// compares their response rates.
func customizationImpact(activities []ActivityRecord) CustomizationImpact {
	var custTotal, custResponded, plainTotal, plainResponded int
	for _, a := range activities {
		if a.WasCustomized {
			custTotal++
			if a.ResponseReceived {
				custResponded++
			}
		} else {
			plainTotal++
			if a.ResponseReceived {
				plainResponded++
			}
		}
	}

	custRate := responseRate(custResponded, custTotal)
	plainRate := responseRate(plainResponded, plainTotal)

	impact := 0.0
	if custTotal > 0 && plainTotal > 0 {
		impact = round1(custRate - plainRate)
	}

	sufficient := custTotal >= minCustomizationSample && plainTotal >= minCustomizationSample

	// Without enough evidence either way, keep encouraging personalization.
	recommend := true
	if sufficient {
		recommend = impact > 0
	}

	return CustomizationImpact{
		Customized:             GroupRate{Rate: custRate},
		NonCustomized:          GroupRate{Rate: plainRate},
		Impact:                 impact,
		RecommendCustomization: recommend,
		HasSufficientData:      sufficient,
	}
}

// fallbackResponseEstimate is returned when no reply latency has been
// observed yet.
const fallbackResponseEstimate = "24-48"

// responseTimeExpectations summarizes reply latency over responded
// activities with a recorded time.
func responseTimeExpectations(activities []ActivityRecord, category string) ResponseTimeExpectations {
	var times []float64
	var categoryTimes []float64
	for _, a := range activities {
		if !a.ResponseReceived || a.ResponseTime == nil {
			continue
		}
		times = append(times, *a.ResponseTime)
		if category != "" && a.TemplateCategory == category {
			categoryTimes = append(categoryTimes, *a.ResponseTime)
		}
	}

	if len(times) == 0 {
		return ResponseTimeExpectations{AverageTime: fallbackResponseEstimate}
	}

	sorted := make([]float64, len(times))
	copy(sorted, times)
	sort.Float64s(sorted)

	var sum float64
	for _, t := range sorted {
		sum += t
	}

	expectations := ResponseTimeExpectations{
		AverageTime:       fmt.Sprintf("%.1f", sum/float64(len(sorted))),
		MedianTime:        median(sorted),
		FastestResponse:   sorted[0],
		SlowestResponse:   sorted[len(sorted)-1],
		HasSufficientData: true,
	}

	if len(categoryTimes) > 0 {
		var catSum float64
		for _, t := range categoryTimes {
			catSum += t
		}
		catAvg := catSum / float64(len(categoryTimes))
		expectations.CategoryAverageTime = &catAvg
	}
	return expectations
}

// median expects a sorted non-empty slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// categoryAdviceFor builds the category dimension. Curated advice needs a
// minimum number of replies in that category; below it the generic list is
// served instead.
func categoryAdviceFor(activities []ActivityRecord, category string) *CategoryAdvice {
	var total, responded int
	for _, a := range activities {
		if a.TemplateCategory != category {
			continue
		}
		total++
		if a.ResponseReceived {
			responded++
		}
	}

	advice := &CategoryAdvice{
		ResponseRate:      responseRate(responded, total),
		HasSufficientData: responded >= minCategoryResponded,
	}
	if advice.HasSufficientData {
		advice.Recommendations = adviceFor(category)
	} else {
		advice.Recommendations = genericAdvice
	}
	return advice
}

// confidenceScore grades how much historical evidence backs the bundle.
// Base tiers come from total volume; a requested category scales the score
// by its own sample size; a heavily skewed overall response rate signals an
// unrepresentative sample and takes a penalty.
func confidenceScore(activities []ActivityRecord, category string) int {
	total := len(activities)

	var score float64
	switch {
	case total >= 50:
		score = 100
	case total >= 30:
		score = 80
	case total >= 15:
		score = 60
	case total >= 5:
		score = 40
	default:
		score = 20
	}

	if category != "" {
		var catCount int
		for _, a := range activities {
			if a.TemplateCategory == category {
				catCount++
			}
		}
		switch {
		case catCount >= 20:
			score *= 1.2
		case catCount >= 10:
			score *= 1.1
		case catCount >= 5:
			score *= 1.05
		case catCount < 3:
			score *= 0.8
		}
		if score > 100 {
			score = 100
		}
	}

	if total > 0 {
		var responded int
		for _, a := range activities {
			if a.ResponseReceived {
				responded++
			}
		}
		rate := responseRate(responded, total)
		if rate < 10 || rate > 90 {
			score *= 0.9
		}
	}

	result := int(math.Round(score))
	if result < 0 {
		result = 0
	}
	if result > 100 {
		result = 100
	}
	return result
}

// defaultRecommendations is the fixed fallback bundle returned when the
// pipeline fails. It matches what a run over an empty activity log produces
// for the dimensions that do not depend on category or query.
func defaultRecommendations() Recommendation {
	return Recommendation{
		BestTimeToSend: TimingRecommendation{
			BestTimeSlot:     SlotMorning,
			BestTimeSlotName: SlotName(SlotMorning),
		},
		SubjectLineRecommendations: subjectLineGuidance(),
		TemplateRecommendations: TemplateRecommendation{
			BestOverallTemplate: DefaultCategory,
		},
		CustomizationImpact: CustomizationImpact{
			RecommendCustomization: true,
		},
		ResponseTimeExpectations: ResponseTimeExpectations{
			AverageTime: fallbackResponseEstimate,
		},
		ConfidenceScore: 20,
	}
}

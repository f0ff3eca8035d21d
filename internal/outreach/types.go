package outreach

import "time"

// ActivityStatus is the lifecycle state of an outreach activity.
type ActivityStatus string

const (
	StatusSent      ActivityStatus = "sent"
	StatusResponded ActivityStatus = "responded"
)

// DefaultCategory is assigned when an activity is recorded without a
// supplier category.
const DefaultCategory = "general"

// ActivityRecord is one outbound supplier email and its eventual response
// outcome. ResponseReceived, Status and ResponseTime move together: a record
// either has all three in the "sent" state or all three in the "responded"
// state.
type ActivityRecord struct {
	ID                 string         `json:"id"`
	ProviderName       string         `json:"providerName"`
	TemplateCategory   string         `json:"templateCategory"`
	WasCustomized      bool           `json:"wasCustomized"`
	Timestamp          time.Time      `json:"timestamp"`
	Status             ActivityStatus `json:"status"`
	ResponseReceived   bool           `json:"responseReceived"`
	ResponseTime       *float64       `json:"responseTime"`       // hours from send to reply
	EffectivenessScore *float64       `json:"effectivenessScore"` // derived, optional
	EmailID            string         `json:"emailId,omitempty"`  // transport-layer message id
}

// ActivityOptions are the caller-supplied fields for a new activity.
type ActivityOptions struct {
	ProviderName     string `json:"providerName"`
	TemplateCategory string `json:"templateCategory"`
	WasCustomized    bool   `json:"wasCustomized"`
	EmailID          string `json:"emailId,omitempty"`
}

// ResponseData carries optional fields recorded when a reply arrives.
type ResponseData struct {
	EmailID            string   `json:"emailId,omitempty"`
	EffectivenessScore *float64 `json:"effectivenessScore,omitempty"`
}

// ActivityFilter selects activities; all set fields must match.
type ActivityFilter struct {
	Category     string         // exact match on TemplateCategory
	Status       ActivityStatus // exact match
	Responded    *bool          // equality on ResponseReceived
	Customized   *bool          // equality on WasCustomized
	ProviderName string         // case-insensitive substring
}

// CategoryStat aggregates activities within one supplier category.
type CategoryStat struct {
	Total               int     `json:"total"`
	Responded           int     `json:"responded"`
	AverageResponseTime float64 `json:"averageResponseTime"`
}

// MetricsSnapshot is the full aggregate over the activity log, recomputed
// from scratch on every update.
type MetricsSnapshot struct {
	TotalEmails         int                     `json:"totalEmails"`
	TotalResponses      int                     `json:"totalResponses"`
	ResponseRate        float64                 `json:"responseRate"` // percent, 0 when no emails
	AverageResponseTime float64                 `json:"averageResponseTime"`
	CategoryStats       map[string]CategoryStat `json:"categoryStats"`
	UpdatedAt           time.Time               `json:"updatedAt"`
}

// PopulationStats summarizes one outreach population for comparison.
// Rates are 2-decimal strings and times 1-decimal, the format the
// comparison panel renders directly.
type PopulationStats struct {
	Total           int    `json:"total"`
	Responded       int    `json:"responded"`
	ResponseRate    string `json:"responseRate"`
	AvgResponseTime string `json:"avgResponseTime"`
}

// ComparisonDifference is assisted minus manual; both values may be negative.
type ComparisonDifference struct {
	ResponseRate    float64 `json:"responseRate"`
	AvgResponseTime float64 `json:"avgResponseTime"`
}

// CategoryBreakdownEntry is one category row of the comparison view.
type CategoryBreakdownEntry struct {
	Category        string `json:"category"`
	Total           int    `json:"total"`
	ResponseRate    string `json:"responseRate"`
	AvgResponseTime string `json:"avgResponseTime"`
}

// ComparisonResult contrasts assisted outreach with the manually-sent
// email log.
type ComparisonResult struct {
	AI                PopulationStats          `json:"ai"`
	NonAI             PopulationStats          `json:"nonAi"`
	Difference        ComparisonDifference     `json:"difference"`
	CategoryBreakdown []CategoryBreakdownEntry `json:"categoryBreakdown"`
}

// TraditionalRecord is the minimal shape the comparison analyzer needs from
// the host platform's manually-sent email log.
type TraditionalRecord struct {
	IsAIGenerated bool     `json:"isAiGenerated"`
	Responded     bool     `json:"responded"`
	ResponseTime  *float64 `json:"responseTime"` // hours, nil when no reply
}

// TimeSlot is one of four fixed local-hour windows used to bucket send times.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"   // [8, 12)
	SlotAfternoon TimeSlot = "afternoon" // [12, 16)
	SlotEvening   TimeSlot = "evening"   // [16, 20)
	SlotNight     TimeSlot = "night"     // [20, 8) wraparound
)

// SlotStats is the per-slot breakdown behind the timing recommendation.
type SlotStats struct {
	Slot      TimeSlot `json:"slot"`
	SlotName  string   `json:"slotName"`
	Sent      int      `json:"sent"`
	Responded int      `json:"responded"`
	Rate      float64  `json:"rate"`
}

// TimingRecommendation names the send window with the best historical
// response rate.
type TimingRecommendation struct {
	BestTimeSlot      TimeSlot `json:"bestTimeSlot"`
	BestTimeSlotName  string   `json:"bestTimeSlotName"`
	BestRate          float64  `json:"bestRate"`
	HasSufficientData bool     `json:"hasSufficientData"`
}

// LengthRange is a character-count window.
type LengthRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SubjectLineRecommendation is static, domain-informed subject guidance.
type SubjectLineRecommendation struct {
	RecommendedPatterns []string    `json:"recommendedPatterns"`
	AvoidPatterns       []string    `json:"avoidPatterns"`
	OptimalLength       LengthRange `json:"optimalLength"`
	IncludeElements     []string    `json:"includeElements"`
}

// CategoryTemplate points at the requested category's own performance.
type CategoryTemplate struct {
	Category     string  `json:"category"`
	ResponseRate float64 `json:"responseRate"`
}

// TemplateRecommendation names the best-performing template category.
type TemplateRecommendation struct {
	BestOverallTemplate      string            `json:"bestOverallTemplate"`
	BestOverallResponseRate  float64           `json:"bestOverallResponseRate"`
	CategorySpecificTemplate *CategoryTemplate `json:"categorySpecificTemplate,omitempty"`
	HasSufficientData        bool              `json:"hasSufficientData"`
}

// GroupRate is the response rate of one activity subgroup.
type GroupRate struct {
	Rate float64 `json:"rate"`
}

// CustomizationImpact compares edited messages against raw template sends.
type CustomizationImpact struct {
	Customized             GroupRate `json:"customized"`
	NonCustomized          GroupRate `json:"nonCustomized"`
	Impact                 float64   `json:"impact"` // customized minus non-customized, 1dp
	RecommendCustomization bool      `json:"recommendCustomization"`
	HasSufficientData      bool      `json:"hasSufficientData"`
}

// ResponseTimeExpectations summarizes observed reply latency. AverageTime is
// a 1-decimal hour figure, or the static "24-48" estimate when no replies
// have been observed.
type ResponseTimeExpectations struct {
	AverageTime         string   `json:"averageTime"`
	MedianTime          float64  `json:"medianTime"`
	FastestResponse     float64  `json:"fastestResponse"`
	SlowestResponse     float64  `json:"slowestResponse"`
	CategoryAverageTime *float64 `json:"categoryAverageTime,omitempty"`
	HasSufficientData   bool     `json:"hasSufficientData"`
}

// CategoryAdvice is curated guidance for one supplier category.
type CategoryAdvice struct {
	ResponseRate      float64  `json:"responseRate"`
	Recommendations   []string `json:"recommendations"`
	HasSufficientData bool     `json:"hasSufficientData"`
}

// SearchContext flags which signals a search query already covers.
type SearchContext struct {
	IncludesLocation bool `json:"includesLocation"`
	IncludesDate     bool `json:"includesDate"`
	IncludesBudget   bool `json:"includesBudget"`
	IncludesSize     bool `json:"includesSize"`
}

// QueryAdvice suggests signals missing from a supplier search query.
type QueryAdvice struct {
	SearchContext   SearchContext `json:"searchContext"`
	Recommendations []string      `json:"recommendations"`
}

// Recommendation is the engine's full output bundle. Every dimension is
// always present and structurally valid; optional dimensions appear only
// when a category or query was supplied.
type Recommendation struct {
	BestTimeToSend             TimingRecommendation      `json:"bestTimeToSend"`
	SubjectLineRecommendations SubjectLineRecommendation `json:"subjectLineRecommendations"`
	TemplateRecommendations    TemplateRecommendation    `json:"templateRecommendations"`
	CustomizationImpact        CustomizationImpact       `json:"customizationImpact"`
	ResponseTimeExpectations   ResponseTimeExpectations  `json:"responseTimeExpectations"`
	CategorySpecific           *CategoryAdvice           `json:"categorySpecific,omitempty"`
	QuerySpecific              *QueryAdvice              `json:"querySpecific,omitempty"`
	ConfidenceScore            int                       `json:"confidenceScore"`
}

// HistoryEntry is one generated recommendation kept for audit and
// "mark as applied" bookkeeping.
type HistoryEntry struct {
	ID              string         `json:"id"`
	Category        string         `json:"category,omitempty"`
	SearchQuery     string         `json:"searchQuery,omitempty"`
	Recommendations Recommendation `json:"recommendations"`
	GeneratedAt     time.Time      `json:"generatedAt"`
	Applied         bool           `json:"applied"`
	AppliedAt       *time.Time     `json:"appliedAt,omitempty"`
}

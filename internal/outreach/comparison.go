package outreach

import (
	"context"
	"fmt"
	"sort"

	"github.com/planivia/outreach-insights/internal/pkg/logger"
)

// TraditionalSource exposes the host platform's manually-sent supplier
// email log, the population assisted outreach is compared against.
type TraditionalSource interface {
	FetchManualOutreach(ctx context.Context) ([]TraditionalRecord, error)
}

// Comparator contrasts engine-assisted outreach against the traditional
// dataset using the same rate and mean formulas as the aggregator.
type Comparator struct {
	aggregator *Aggregator
	source     TraditionalSource
}

// NewComparator creates a Comparator.
func NewComparator(aggregator *Aggregator, source TraditionalSource) *Comparator {
	return &Comparator{aggregator: aggregator, source: source}
}

func formatRate(rate float64) string {
	return fmt.Sprintf("%.2f", rate)
}

func formatHours(hours float64) string {
	return fmt.Sprintf("%.1f", hours)
}

// zeroComparison is the all-zero result returned on any failure.
func zeroComparison() ComparisonResult {
	zero := PopulationStats{ResponseRate: "0.00", AvgResponseTime: "0.0"}
	return ComparisonResult{
		AI:                zero,
		NonAI:             zero,
		CategoryBreakdown: []CategoryBreakdownEntry{},
	}
}

// GetComparisonData builds the assisted-vs-manual comparison. Any failure
// yields the all-zero result rather than an error.
func (c *Comparator) GetComparisonData(ctx context.Context) ComparisonResult {
	metrics := c.aggregator.GetMetrics(ctx)

	if c.source == nil {
		logger.Warn("comparison requested without a traditional source configured")
		return zeroComparison()
	}

	records, err := c.source.FetchManualOutreach(ctx)
	if err != nil {
		logger.Error("failed to fetch manual outreach records", "error", err)
		return zeroComparison()
	}

	var manualTotal, manualResponded int
	var manualTimeSum float64
	var manualTimeCount int
	for _, rec := range records {
		if rec.IsAIGenerated {
			continue
		}
		manualTotal++
		if rec.Responded {
			manualResponded++
			if rec.ResponseTime != nil {
				manualTimeSum += *rec.ResponseTime
				manualTimeCount++
			}
		}
	}

	manualRate := responseRate(manualResponded, manualTotal)
	manualAvgTime := 0.0
	if manualTimeCount > 0 {
		manualAvgTime = manualTimeSum / float64(manualTimeCount)
	}

	result := ComparisonResult{
		AI: PopulationStats{
			Total:           metrics.TotalEmails,
			Responded:       metrics.TotalResponses,
			ResponseRate:    formatRate(metrics.ResponseRate),
			AvgResponseTime: formatHours(metrics.AverageResponseTime),
		},
		NonAI: PopulationStats{
			Total:           manualTotal,
			Responded:       manualResponded,
			ResponseRate:    formatRate(manualRate),
			AvgResponseTime: formatHours(manualAvgTime),
		},
		Difference: ComparisonDifference{
			ResponseRate:    metrics.ResponseRate - manualRate,
			AvgResponseTime: metrics.AverageResponseTime - manualAvgTime,
		},
		CategoryBreakdown: []CategoryBreakdownEntry{},
	}

	categories := make([]string, 0, len(metrics.CategoryStats))
	for category := range metrics.CategoryStats {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		stat := metrics.CategoryStats[category]
		result.CategoryBreakdown = append(result.CategoryBreakdown, CategoryBreakdownEntry{
			Category:        category,
			Total:           stat.Total,
			ResponseRate:    formatRate(responseRate(stat.Responded, stat.Total)),
			AvgResponseTime: formatHours(stat.AverageResponseTime),
		})
	}

	return result
}

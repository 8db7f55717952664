package goals

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/blakecrosley/941analytics/internal/pkg/async"
	"github.com/blakecrosley/941analytics/internal/timeframe"
	"github.com/blakecrosley/941analytics/internal/visits"
)

// Result is a goal analysis over a date range. Completions counts every
// matching visit including repeats; ConversionRate is the share of the
// site's visitors who completed the goal at least once, as a percentage
// rounded to two decimals.
type Result struct {
	GoalID         uint                 `json:"goal_id"`
	Completions    int64                `json:"completions"`
	UniqueVisitors int                  `json:"unique_visitors"`
	TotalVisitors  int64                `json:"total_visitors"`
	ConversionRate float64              `json:"conversion_rate"`
	Daily          []timeframe.DateStat `json:"daily"`
	Trend          float64              `json:"trend"`
	TargetCount    *int                 `json:"target_count,omitempty"`
	TargetProgress *float64             `json:"target_progress,omitempty"`
}

// Analyze evaluates a goal over a date range. The four underlying queries
// are independent, so they run concurrently through a worker pool; any
// query failure fails the whole analysis.
func Analyze(ctx context.Context, db *gorm.DB, goal *Goal, r timeframe.DateRange) (*Result, error) {
	pred := visits.StepPredicate{Kind: visits.PredicateKind(goal.GoalType), Value: goal.GoalValue}

	tasks := []async.Task{
		{
			Name: "completions",
			Execute: func() (interface{}, error) {
				return visits.CountCompletions(ctx, db, goal.SiteID, pred, r)
			},
		},
		{
			Name: "converters",
			Execute: func() (interface{}, error) {
				return visits.DistinctVisitors(ctx, db, goal.SiteID, pred, r)
			},
		},
		{
			Name: "visitors",
			Execute: func() (interface{}, error) {
				return visits.CountVisitors(ctx, db, goal.SiteID, r)
			},
		},
		{
			Name: "daily",
			Execute: func() (interface{}, error) {
				return visits.DailyCompletions(ctx, db, goal.SiteID, pred, r)
			},
		},
	}

	results := async.NewPool(len(tasks)).Execute(ctx, tasks)
	for _, task := range tasks {
		result, ok := results[task.Name]
		if !ok {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("goal %s query did not complete", task.Name)
		}
		if result.Err != nil {
			return nil, fmt.Errorf("goal %s query: %w", task.Name, result.Err)
		}
	}

	completions := results["completions"].Data.(int64)
	converters := results["converters"].Data.(map[string]struct{})
	totalVisitors := results["visitors"].Data.(int64)
	daily := r.FillDailySeries(results["daily"].Data.([]timeframe.DateStat))

	conversionRate := 0.0
	if totalVisitors > 0 {
		conversionRate = round2(float64(len(converters)) / float64(totalVisitors) * 100)
	}

	analysis := &Result{
		GoalID:         goal.ID,
		Completions:    completions,
		UniqueVisitors: len(converters),
		TotalVisitors:  totalVisitors,
		ConversionRate: conversionRate,
		Daily:          daily,
		Trend:          timeframe.Trend(daily),
		TargetCount:    goal.TargetCount,
	}

	if goal.TargetCount != nil && *goal.TargetCount > 0 {
		progress := round2(float64(completions) / float64(*goal.TargetCount) * 100)
		analysis.TargetProgress = &progress
	}

	return analysis, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

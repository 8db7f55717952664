package funnels

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"gorm.io/gorm"

	"github.com/blakecrosley/941analytics/internal/pkg/async"
	"github.com/blakecrosley/941analytics/internal/timeframe"
	"github.com/blakecrosley/941analytics/internal/visits"
)

// StepResult is the outcome of one funnel step. Visitors are non-increasing
// across steps: each step's cohort is intersected with the previous step's
// survivors.
type StepResult struct {
	StepNumber     int      `json:"step_number"`
	Label          string   `json:"label"`
	Type           StepType `json:"type"`
	Value          string   `json:"value"`
	Visitors       int      `json:"visitors"`
	ConversionRate float64  `json:"conversion_rate"`
	DropOffRate    float64  `json:"drop_off_rate"`
	DropOffCount   int      `json:"drop_off_count"`
}

// Result is a full funnel analysis.
type Result struct {
	FunnelID              uint         `json:"funnel_id"`
	Steps                 []StepResult `json:"steps"`
	TotalEntered          int          `json:"total_entered"`
	TotalConverted        int          `json:"total_converted"`
	OverallConversionRate float64      `json:"overall_conversion_rate"`
}

const maxStepFetchWorkers = 4

// Analyze evaluates a funnel over a date range. Each step's visitor set is
// fetched independently and in parallel; the intersections are then computed
// sequentially in step order, since step i depends on step i-1's survivors.
// Any failed step query aborts the whole analysis: later steps are
// meaningless without earlier survivor sets.
//
// Step order means "also satisfied within the range", not temporal
// precedence: a visitor who hit step 2 before step 1 still counts.
func Analyze(ctx context.Context, db *gorm.DB, funnel *Funnel, r timeframe.DateRange) (*Result, error) {
	steps, err := funnel.Steps()
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return &Result{FunnelID: funnel.ID, Steps: []StepResult{}}, nil
	}

	cohorts, err := fetchStepCohorts(ctx, db, funnel.SiteID, steps, r)
	if err != nil {
		return nil, err
	}

	stepResults := make([]StepResult, 0, len(steps))
	var survivors map[string]struct{}

	for i, step := range steps {
		current := cohorts[i]
		if i > 0 {
			current = intersect(survivors, current)
		}

		result := StepResult{
			StepNumber: i + 1,
			Label:      step.DisplayLabel(),
			Type:       step.Type,
			Value:      step.Value,
			Visitors:   len(current),
		}

		if i == 0 {
			result.ConversionRate = 100.0
		} else {
			prevCount := stepResults[i-1].Visitors
			if prevCount > 0 {
				result.ConversionRate = round1(float64(len(current)) / float64(prevCount) * 100)
			}
			result.DropOffRate = round1(100 - result.ConversionRate)
			result.DropOffCount = prevCount - len(current)
		}

		stepResults = append(stepResults, result)
		survivors = current
	}

	totalEntered := stepResults[0].Visitors
	totalConverted := stepResults[len(stepResults)-1].Visitors
	overall := 0.0
	if totalEntered > 0 {
		overall = round1(float64(totalConverted) / float64(totalEntered) * 100)
	}

	return &Result{
		FunnelID:              funnel.ID,
		Steps:                 stepResults,
		TotalEntered:          totalEntered,
		TotalConverted:        totalConverted,
		OverallConversionRate: overall,
	}, nil
}

// fetchStepCohorts runs every step's visitor-set query concurrently and
// returns them in step order.
func fetchStepCohorts(ctx context.Context, db *gorm.DB, siteID uint, steps []FunnelStep, r timeframe.DateRange) ([]map[string]struct{}, error) {
	tasks := make([]async.Task, len(steps))
	for i, step := range steps {
		pred := visits.StepPredicate{Kind: visits.PredicateKind(step.Type), Value: step.Value}
		tasks[i] = async.Task{
			Name: strconv.Itoa(i),
			Execute: func() (interface{}, error) {
				return visits.DistinctVisitors(ctx, db, siteID, pred, r)
			},
		}
	}

	workers := len(tasks)
	if workers > maxStepFetchWorkers {
		workers = maxStepFetchWorkers
	}
	results := async.NewPool(workers).Execute(ctx, tasks)

	cohorts := make([]map[string]struct{}, len(steps))
	for i := range steps {
		result, ok := results[strconv.Itoa(i)]
		if !ok {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("step %d query did not complete", i+1)
		}
		if result.Err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, result.Err)
		}
		cohorts[i] = result.Data.(map[string]struct{})
	}
	return cohorts, nil
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	if len(a) > len(b) {
		a, b = b, a
	}
	out := make(map[string]struct{}, len(a))
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

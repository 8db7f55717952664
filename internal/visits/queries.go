package visits

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/blakecrosley/941analytics/internal/timeframe"
)

// PredicateKind selects how a funnel or goal step matches visits.
type PredicateKind string

const (
	PredicatePage  PredicateKind = "page"  // substring match against the visited URL
	PredicateEvent PredicateKind = "event" // exact custom event name
)

// StepPredicate is the query shape shared by funnel steps and goals.
type StepPredicate struct {
	Kind  PredicateKind
	Value string
}

func (p StepPredicate) whereClause() (string, []any, error) {
	switch p.Kind {
	case PredicatePage:
		return "visit_type = ? AND raw_url LIKE '%' || ? || '%'",
			[]any{VisitTypePageView, p.Value}, nil
	case PredicateEvent:
		return "visit_type = ? AND event_name = ?",
			[]any{VisitTypeCustomEvent, p.Value}, nil
	default:
		return "", nil, fmt.Errorf("unknown predicate kind: %s", p.Kind)
	}
}

// DistinctVisitors returns the set of visitor signatures satisfying a
// predicate within the range. Bot traffic never counts.
func DistinctVisitors(ctx context.Context, db *gorm.DB, siteID uint, pred StepPredicate, r timeframe.DateRange) (map[string]struct{}, error) {
	clause, args, err := pred.whereClause()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT visitor_signature
		FROM visits
		WHERE site_id = ? AND is_bot = 0 AND %s
		  AND timestamp >= ? AND timestamp <= ?`, clause)

	queryArgs := append([]any{siteID}, args...)
	queryArgs = append(queryArgs, r.From, r.To)

	var signatures []string
	if err := db.WithContext(ctx).Raw(query, queryArgs...).Scan(&signatures).Error; err != nil {
		return nil, fmt.Errorf("querying distinct visitors: %w", err)
	}

	set := make(map[string]struct{}, len(signatures))
	for _, sig := range signatures {
		set[sig] = struct{}{}
	}
	return set, nil
}

// CountVisitors counts distinct non-bot visitor signatures for a site within
// the range. Only page views count: a signature that shows up solely through
// custom events never browsed the site, and letting it into the denominator
// would deflate conversion rates.
func CountVisitors(ctx context.Context, db *gorm.DB, siteID uint, r timeframe.DateRange) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT visitor_signature)
		FROM visits
		WHERE site_id = ? AND is_bot = 0 AND visit_type = ?
		  AND timestamp >= ? AND timestamp <= ?`,
		siteID, VisitTypePageView, r.From, r.To).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting visitors: %w", err)
	}
	return count, nil
}

// CountCompletions counts every non-bot visit satisfying the predicate, with
// repeats included.
func CountCompletions(ctx context.Context, db *gorm.DB, siteID uint, pred StepPredicate, r timeframe.DateRange) (int64, error) {
	clause, args, err := pred.whereClause()
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM visits
		WHERE site_id = ? AND is_bot = 0 AND %s
		  AND timestamp >= ? AND timestamp <= ?`, clause)

	queryArgs := append([]any{siteID}, args...)
	queryArgs = append(queryArgs, r.From, r.To)

	var count int64
	if err := db.WithContext(ctx).Raw(query, queryArgs...).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("counting completions: %w", err)
	}
	return count, nil
}

// DailyCompletions groups completions per calendar day. Days with no
// completions are absent; callers zero-fill with DateRange.FillDailySeries.
func DailyCompletions(ctx context.Context, db *gorm.DB, siteID uint, pred StepPredicate, r timeframe.DateRange) ([]timeframe.DateStat, error) {
	clause, args, err := pred.whereClause()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT date(timestamp) AS date, COUNT(*) AS count
		FROM visits
		WHERE site_id = ? AND is_bot = 0 AND %s
		  AND timestamp >= ? AND timestamp <= ?
		GROUP BY date(timestamp)
		ORDER BY date(timestamp)`, clause)

	queryArgs := append([]any{siteID}, args...)
	queryArgs = append(queryArgs, r.From, r.To)

	var stats []timeframe.DateStat
	if err := db.WithContext(ctx).Raw(query, queryArgs...).Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("querying daily completions: %w", err)
	}
	return stats, nil
}

// BotCategoryStat is one row of the bot traffic breakdown.
type BotCategoryStat struct {
	Category string
	Name     string
	Count    int
}

// BotBreakdown summarizes detected bot traffic by category and bot name.
func BotBreakdown(ctx context.Context, db *gorm.DB, siteID uint, r timeframe.DateRange) ([]BotCategoryStat, error) {
	var stats []BotCategoryStat
	err := db.WithContext(ctx).Raw(`
		SELECT bot_category AS category, bot_name AS name, COUNT(*) AS count
		FROM visits
		WHERE site_id = ? AND is_bot = 1
		  AND timestamp >= ? AND timestamp <= ?
		GROUP BY bot_category, bot_name
		ORDER BY count DESC, bot_name ASC`,
		siteID, r.From, r.To).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("querying bot breakdown: %w", err)
	}
	return stats, nil
}

// SourceStat is one row of the traffic source breakdown.
type SourceStat struct {
	ReferrerType string
	SourceName   string
	Visitors     int
}

// SourceBreakdown summarizes where a site's non-bot traffic came from.
func SourceBreakdown(ctx context.Context, db *gorm.DB, siteID uint, r timeframe.DateRange) ([]SourceStat, error) {
	var stats []SourceStat
	err := db.WithContext(ctx).Raw(`
		SELECT referrer_type, source_name, COUNT(DISTINCT visitor_signature) AS visitors
		FROM visits
		WHERE site_id = ? AND is_bot = 0
		  AND timestamp >= ? AND timestamp <= ?
		GROUP BY referrer_type, source_name
		ORDER BY visitors DESC, source_name ASC`,
		siteID, r.From, r.To).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("querying source breakdown: %w", err)
	}
	return stats, nil
}

// DeleteBotVisitsBefore removes bot traffic older than the cutoff and returns
// the number of rows deleted. Human visits are never touched.
func DeleteBotVisitsBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("is_bot = 1 AND timestamp < ?", cutoff).Delete(&Visit{})
	if result.Error != nil {
		return 0, fmt.Errorf("deleting old bot visits: %w", result.Error)
	}
	return result.RowsAffected, nil
}

package timeframe

import (
	"fmt"
	"time"
)

// DateRange is a closed interval in UTC.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange validates and normalizes a range to UTC.
func NewDateRange(from, to time.Time) (DateRange, error) {
	if from.After(to) {
		return DateRange{}, fmt.Errorf("from must be before to")
	}
	return DateRange{From: from.UTC(), To: to.UTC()}, nil
}

// LastNDays returns a range covering the previous n full days up to now.
func LastNDays(n int) DateRange {
	now := time.Now().UTC()
	return DateRange{From: now.AddDate(0, 0, -n), To: now}
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(r.From) && !t.After(r.To)
}

// Days returns the number of calendar days the range touches, counting
// partial days as full.
func (r DateRange) Days() int {
	from := truncateToDay(r.From)
	to := truncateToDay(r.To)
	return int(to.Sub(from).Hours()/24) + 1
}

// DateStat is one point in a daily series: a YYYY-MM-DD date label and a
// count.
type DateStat struct {
	Date  string
	Count int
}

// DayFormat is the label format used for daily buckets, matching SQLite's
// date() output.
const DayFormat = "2006-01-02"

// FillDailySeries expands sparse per-day query results into a dense series
// with one point per calendar day in the range, zero-filled where the store
// returned nothing. Input dates must use DayFormat.
func (r DateRange) FillDailySeries(grouped []DateStat) []DateStat {
	byDate := make(map[string]int, len(grouped))
	for _, stat := range grouped {
		byDate[stat.Date] = stat.Count
	}

	series := make([]DateStat, 0, r.Days())
	for day := truncateToDay(r.From); !day.After(truncateToDay(r.To)); day = day.AddDate(0, 0, 1) {
		label := day.Format(DayFormat)
		series = append(series, DateStat{Date: label, Count: byDate[label]})
	}
	return series
}

// Trend fits a least-squares line through the series and returns its slope,
// in counts per day. Fewer than two points have no trend.
func Trend(points []DateStat) float64 {
	if len(points) < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	n := float64(len(points))

	for i, point := range points {
		x := float64(i)
		y := float64(point.Count)

		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	return (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

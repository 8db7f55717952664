package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateRange(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 7, 23, 59, 59, 0, time.UTC)

	r, err := NewDateRange(from, to)
	require.NoError(t, err)
	assert.Equal(t, 7, r.Days())
	assert.True(t, r.Contains(from.AddDate(0, 0, 3)))
	assert.False(t, r.Contains(to.Add(time.Second)))

	_, err = NewDateRange(to, from)
	assert.Error(t, err)
}

func TestFillDailySeries(t *testing.T) {
	r := DateRange{
		From: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 4, 2, 0, 0, 0, time.UTC),
	}

	series := r.FillDailySeries([]DateStat{
		{Date: "2026-03-02", Count: 5},
		{Date: "2026-03-04", Count: 1},
	})

	require.Len(t, series, 4)
	assert.Equal(t, DateStat{Date: "2026-03-01", Count: 0}, series[0])
	assert.Equal(t, DateStat{Date: "2026-03-02", Count: 5}, series[1])
	assert.Equal(t, DateStat{Date: "2026-03-03", Count: 0}, series[2])
	assert.Equal(t, DateStat{Date: "2026-03-04", Count: 1}, series[3])
}

func TestTrend(t *testing.T) {
	rising := []DateStat{{Count: 1}, {Count: 2}, {Count: 3}}
	assert.InDelta(t, 1.0, Trend(rising), 0.001)

	flat := []DateStat{{Count: 4}, {Count: 4}, {Count: 4}}
	assert.InDelta(t, 0.0, Trend(flat), 0.001)

	assert.Equal(t, 0.0, Trend([]DateStat{{Count: 9}}))
}

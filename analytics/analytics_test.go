package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillDateRange(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	sparse := []DailySales{
		{Date: "2025-03-11", Sales: 2, Revenue: 5400},
		{Date: "2025-03-14", Sales: 1, Revenue: 30000},
	}

	series := FillDateRange(sparse, start, 7)

	require.Len(t, series, 7)
	assert.Equal(t, "2025-03-10", series[0].Date)
	assert.Equal(t, "2025-03-16", series[6].Date)

	// buckets with data carried over
	assert.Equal(t, int64(2), series[1].Sales)
	assert.Equal(t, int64(5400), series[1].Revenue)
	assert.Equal(t, int64(1), series[4].Sales)

	// the rest zero-filled
	for _, i := range []int{0, 2, 3, 5, 6} {
		assert.Zero(t, series[i].Sales, "day %s", series[i].Date)
		assert.Zero(t, series[i].Revenue, "day %s", series[i].Date)
	}
}

func TestFillDateRangeEmpty(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	series := FillDateRange(nil, start, 3)

	require.Len(t, series, 3)
	for i, d := range []string{"2025-03-10", "2025-03-11", "2025-03-12"} {
		assert.Equal(t, d, series[i].Date)
		assert.Zero(t, series[i].Sales)
	}
}

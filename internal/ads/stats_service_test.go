package ads

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/models"
	"github.com/adboardhq/adboard/internal/storage"
)

func newStatsService(repo storage.StatsRepo, cache *redis.Client, ttl time.Duration, now time.Time) *StatsService {
	s := NewStatsService(repo, cache, ttl, nil, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func record(userID, platform, planID string, date time.Time, m models.StatMetrics) models.StatRecord {
	return models.StatRecord{
		UserID:   userID,
		PlanID:   planID,
		Platform: platform,
		Date:     date,
		Metrics:  m,
	}
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		timeRange string
		days      int
	}{
		{"7d", 7},
		{"30d", 30},
		{"90d", 90},
		{"", 7},
		{"1y", 7},
		{"bogus", 7},
	}
	for _, tt := range tests {
		start, end := ResolveWindow(tt.timeRange, now)
		assert.Equal(t, now, end, "timeRange %q", tt.timeRange)
		assert.Equal(t, now.AddDate(0, 0, -tt.days), start, "timeRange %q", tt.timeRange)
	}
}

func TestGetStatisticsSummary(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := storage.NewInMemoryStatsRepo()

	m := models.StatMetrics{Impressions: 100, Clicks: 10, Conversions: 1, Cost: 50, Revenue: 100}
	for i := 0; i < 3; i++ {
		repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -i-1), m))
	}

	svc := newStatsService(repo, nil, 0, now)
	stats, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{TimeRange: "7d"})
	require.NoError(t, err)

	assert.Equal(t, int64(300), stats.Summary.TotalImpressions)
	assert.Equal(t, int64(30), stats.Summary.TotalClicks)
	assert.Equal(t, int64(3), stats.Summary.TotalConversions)
	assert.Equal(t, 150.0, stats.Summary.TotalCost)
	assert.Equal(t, 300.0, stats.Summary.TotalRevenue)
	assert.Equal(t, "10.00", stats.Summary.CTR)
	assert.Equal(t, "10.00", stats.Summary.CVR)
	assert.Equal(t, "100.00", stats.Summary.ROI)
}

func TestGetStatisticsZeroDenominators(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := storage.NewInMemoryStatsRepo()
	svc := newStatsService(repo, nil, 0, now)

	// No records at all: zero sums, not an error.
	stats, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Summary.TotalImpressions)
	assert.Equal(t, "0.00", stats.Summary.CTR)
	assert.Equal(t, "0.00", stats.Summary.CVR)
	assert.Equal(t, "0.00", stats.Summary.ROI)
	assert.Empty(t, stats.CostTrend.Dates)
	assert.Empty(t, stats.PlatformComparison.Platforms)
}

func TestGetStatisticsUnknownRangeMatchesDefault(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := storage.NewInMemoryStatsRepo()
	// One record inside 7 days, one only inside 30.
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -2), models.StatMetrics{Impressions: 10}))
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -20), models.StatMetrics{Impressions: 1000}))

	svc := newStatsService(repo, nil, 0, now)

	weekly, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{TimeRange: "7d"})
	require.NoError(t, err)
	unknown, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{TimeRange: "whatever"})
	require.NoError(t, err)

	assert.Equal(t, weekly, unknown)
	assert.Equal(t, int64(10), unknown.Summary.TotalImpressions)
}

func TestGetStatisticsTrendOrdering(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := storage.NewInMemoryStatsRepo()
	// Inserted out of order; two records share a day.
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 30, Conversions: 3}))
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -5), models.StatMetrics{Cost: 10, Conversions: 1}))
	repo.Add(record("u1", "kuaishou", "", now.AddDate(0, 0, -5), models.StatMetrics{Cost: 5, Conversions: 2}))
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -3), models.StatMetrics{Cost: 20, Conversions: 2}))

	svc := newStatsService(repo, nil, 0, now)
	stats, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-06-10", "2024-06-12", "2024-06-14"}, stats.CostTrend.Dates)
	assert.Equal(t, []float64{15, 20, 30}, stats.CostTrend.Costs)
	assert.Equal(t, []int64{3, 2, 3}, stats.CostTrend.Conversions)
}

func TestGetStatisticsPlatformComparison(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := storage.NewInMemoryStatsRepo()
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -1),
		models.StatMetrics{Cost: 100, Revenue: 250, Conversions: 5}))
	repo.Add(record("u1", "kuaishou", "", now.AddDate(0, 0, -2),
		models.StatMetrics{Cost: 0, Revenue: 50, Conversions: 1}))

	svc := newStatsService(repo, nil, 0, now)
	stats, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{})
	require.NoError(t, err)

	require.Len(t, stats.PlatformComparison.Platforms, 2)
	byPlatform := map[string]int{}
	for i, p := range stats.PlatformComparison.Platforms {
		byPlatform[p] = i
	}
	d := byPlatform["douyin"]
	k := byPlatform["kuaishou"]
	assert.Equal(t, 100.0, stats.PlatformComparison.Costs[d])
	assert.Equal(t, "150.00", stats.PlatformComparison.ROIs[d])
	// Zero cost: ROI falls back rather than dividing by zero.
	assert.Equal(t, "0.00", stats.PlatformComparison.ROIs[k])
	assert.Equal(t, int64(1), stats.PlatformComparison.Conversions[k])
}

func TestGetStatisticsTenantIsolation(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := storage.NewInMemoryStatsRepo()
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 100}))
	repo.Add(record("u2", "douyin", "", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 999}))

	svc := newStatsService(repo, nil, 0, now)
	stats, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, stats.Summary.TotalCost)
}

func TestGetStatisticsFilters(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := storage.NewInMemoryStatsRepo()
	repo.Add(record("u1", "douyin", "p1", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 10}))
	repo.Add(record("u1", "douyin", "p2", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 20}))
	repo.Add(record("u1", "kuaishou", "p1", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 40}))

	svc := newStatsService(repo, nil, 0, now)

	stats, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{Platform: "douyin"})
	require.NoError(t, err)
	assert.Equal(t, 30.0, stats.Summary.TotalCost)

	stats, err = svc.GetStatistics(context.Background(), "u1", StatsQuery{PlanID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 50.0, stats.Summary.TotalCost)

	stats, err = svc.GetStatistics(context.Background(), "u1", StatsQuery{Platform: "kuaishou", PlanID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 40.0, stats.Summary.TotalCost)

	// A platform no record carries matches nothing rather than failing.
	stats, err = svc.GetStatistics(context.Background(), "u1", StatsQuery{Platform: "myspace"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.Summary.TotalCost)
	assert.Equal(t, "0.00", stats.Summary.ROI)
	assert.Empty(t, stats.PlatformComparison.Platforms)
}

func TestGetStatisticsCache(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	repo := storage.NewInMemoryStatsRepo()
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 10}))

	svc := newStatsService(repo, cache, time.Minute, now)

	first, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, first.Summary.TotalCost)

	// New data lands, but the cached response is still served.
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 90}))
	second, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, second.Summary.TotalCost)

	// After the TTL expires the fresh totals appear.
	mr.FastForward(2 * time.Minute)
	third, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, third.Summary.TotalCost)
}

func TestGetStatisticsCacheKeyIncludesFilters(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	repo := storage.NewInMemoryStatsRepo()
	repo.Add(record("u1", "douyin", "", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 10}))
	repo.Add(record("u1", "kuaishou", "", now.AddDate(0, 0, -1), models.StatMetrics{Cost: 20}))

	svc := newStatsService(repo, cache, time.Minute, now)

	all, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 30.0, all.Summary.TotalCost)

	douyin, err := svc.GetStatistics(context.Background(), "u1", StatsQuery{Platform: "douyin"})
	require.NoError(t, err)
	assert.Equal(t, 10.0, douyin.Summary.TotalCost)
}

func TestRatioFormatting(t *testing.T) {
	assert.Equal(t, "0.00", ratio(5, 0))
	assert.Equal(t, "50.00", ratio(1, 2))
	assert.Equal(t, "33.33", ratio(1, 3))
	assert.Equal(t, "66.67", ratio(2, 3))
	assert.Equal(t, "100.00", ratio(10, 10))
	assert.Equal(t, "-50.00", ratio(-1, 2))
}

package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	adbmetrics "github.com/adboardhq/adboard/internal/metrics"
	"github.com/adboardhq/adboard/internal/models"
	"github.com/adboardhq/adboard/internal/storage"
)

// Recognized time ranges. Anything else degrades to the 7-day default.
const (
	Range7d  = "7d"
	Range30d = "30d"
	Range90d = "90d"
)

// StatsQuery scopes one statistics request.
type StatsQuery struct {
	TimeRange string
	Platform  string
	PlanID    string
}

// StatsService aggregates ingested stat records into the dashboard
// statistics payload. Responses are cached in Redis for a short TTL
// keyed by the full filter; the cache is optional.
type StatsService struct {
	stats   storage.StatsRepo
	cache   *redis.Client
	ttl     time.Duration
	metrics *adbmetrics.Metrics
	logger  *zap.Logger
	// now is swapped in tests to pin the aggregation window.
	now func() time.Time
}

func NewStatsService(stats storage.StatsRepo, cache *redis.Client, ttl time.Duration, m *adbmetrics.Metrics, logger *zap.Logger) *StatsService {
	return &StatsService{
		stats:   stats,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ResolveWindow maps a time range to an inclusive [start, end] window
// ending at now. Unrecognized ranges fall back to 7 days.
func ResolveWindow(timeRange string, now time.Time) (start, end time.Time) {
	days := 7
	switch timeRange {
	case Range30d:
		days = 30
	case Range90d:
		days = 90
	}
	return now.AddDate(0, 0, -days), now
}

// normalizeRange collapses unknown ranges onto the default so cache
// keys and metrics labels stay bounded.
func normalizeRange(timeRange string) string {
	switch timeRange {
	case Range7d, Range30d, Range90d:
		return timeRange
	default:
		return Range7d
	}
}

// GetStatistics returns summary totals, the daily cost trend, and the
// per-platform comparison for the user's records inside the window.
func (s *StatsService) GetStatistics(ctx context.Context, userID string, q StatsQuery) (*models.Statistics, error) {
	timeRange := normalizeRange(q.TimeRange)
	if s.metrics != nil {
		s.metrics.StatsQueries.WithLabelValues(timeRange).Inc()
	}

	cacheKey := strings.Join([]string{"stats", userID, timeRange, q.Platform, q.PlanID}, ":")
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	start, end := ResolveWindow(timeRange, s.now())
	filter := storage.StatsFilter{
		UserID:   userID,
		Platform: q.Platform,
		PlanID:   q.PlanID,
		Start:    start,
		End:      end,
	}

	totals, err := s.stats.Summarize(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize statistics: %w", err)
	}
	trend, err := s.stats.TrendByDay(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load trend statistics: %w", err)
	}
	platforms, err := s.stats.ByPlatform(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform statistics: %w", err)
	}

	result := &models.Statistics{
		Summary:            buildSummary(totals),
		CostTrend:          buildTrend(trend),
		PlatformComparison: buildComparison(platforms),
	}
	s.toCache(ctx, cacheKey, result)
	return result, nil
}

func buildSummary(t storage.StatTotals) models.StatsSummary {
	return models.StatsSummary{
		TotalImpressions: t.Impressions,
		TotalClicks:      t.Clicks,
		TotalConversions: t.Conversions,
		TotalCost:        t.Cost,
		TotalRevenue:     t.Revenue,
		CTR:              ratio(float64(t.Clicks), float64(t.Impressions)),
		CVR:              ratio(float64(t.Conversions), float64(t.Clicks)),
		ROI:              ratio(t.Revenue-t.Cost, t.Cost),
	}
}

func buildTrend(buckets []storage.DayBucket) models.CostTrend {
	trend := models.CostTrend{
		Dates:       make([]string, 0, len(buckets)),
		Costs:       make([]float64, 0, len(buckets)),
		Conversions: make([]int64, 0, len(buckets)),
	}
	for _, b := range buckets {
		trend.Dates = append(trend.Dates, b.Day)
		trend.Costs = append(trend.Costs, b.Totals.Cost)
		trend.Conversions = append(trend.Conversions, b.Totals.Conversions)
	}
	return trend
}

func buildComparison(buckets []storage.PlatformBucket) models.PlatformComparison {
	cmp := models.PlatformComparison{
		Platforms:   make([]string, 0, len(buckets)),
		Costs:       make([]float64, 0, len(buckets)),
		Conversions: make([]int64, 0, len(buckets)),
		ROIs:        make([]string, 0, len(buckets)),
	}
	for _, b := range buckets {
		cmp.Platforms = append(cmp.Platforms, b.Platform)
		cmp.Costs = append(cmp.Costs, b.Totals.Cost)
		cmp.Conversions = append(cmp.Conversions, b.Totals.Conversions)
		cmp.ROIs = append(cmp.ROIs, ratio(b.Totals.Revenue-b.Totals.Cost, b.Totals.Cost))
	}
	return cmp
}

// ratio formats numerator/denominator*100 with exactly two decimals.
// A zero denominator yields "0.00".
func ratio(numerator, denominator float64) string {
	if denominator == 0 {
		return "0.00"
	}
	v := numerator / denominator * 100
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}

func (s *StatsService) fromCache(ctx context.Context, key string) *models.Statistics {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.StatsCacheMiss.Inc()
		}
		return nil
	}
	var stats models.Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.Warn("stats cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil
	}
	if s.metrics != nil {
		s.metrics.StatsCacheHits.Inc()
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, key string, stats *models.Statistics) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}

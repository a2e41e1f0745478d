package storage

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseStatsRepo implements StatsRepo over a ClickHouse statistics
// table. Column layout mirrors the Postgres table so either backend can
// serve the same aggregations.
type ClickHouseStatsRepo struct {
	conn driver.Conn
}

func NewClickHouseStatsRepo(conn driver.Conn) *ClickHouseStatsRepo {
	return &ClickHouseStatsRepo{conn: conn}
}

func chStatsWhere(f StatsFilter) (string, []any) {
	where := `WHERE user_id = ? AND date >= toDate(?) AND date <= toDate(?)`
	args := []any{f.UserID, f.Start, f.End}
	if f.Platform != "" {
		where += ` AND platform = ?`
		args = append(args, f.Platform)
	}
	if f.PlanID != "" {
		where += ` AND plan_id = ?`
		args = append(args, f.PlanID)
	}
	return where, args
}

func (r *ClickHouseStatsRepo) Summarize(ctx context.Context, f StatsFilter) (StatTotals, error) {
	where, args := chStatsWhere(f)
	var t StatTotals
	err := r.conn.QueryRow(ctx, `
		SELECT toInt64(sum(impressions)), toInt64(sum(clicks)),
			   toInt64(sum(conversions)), toFloat64(sum(cost)),
			   toFloat64(sum(revenue))
		FROM statistics `+where,
		args...).Scan(&t.Impressions, &t.Clicks, &t.Conversions, &t.Cost, &t.Revenue)
	if err != nil {
		return StatTotals{}, fmt.Errorf("failed to summarize statistics: %w", err)
	}
	return t, nil
}

func (r *ClickHouseStatsRepo) TrendByDay(ctx context.Context, f StatsFilter) ([]DayBucket, error) {
	where, args := chStatsWhere(f)
	rows, err := r.conn.Query(ctx, `
		SELECT formatDateTime(date, '%Y-%m-%d') AS day,
			   toInt64(sum(impressions)), toInt64(sum(clicks)),
			   toInt64(sum(conversions)), toFloat64(sum(cost)),
			   toFloat64(sum(revenue))
		FROM statistics `+where+`
		GROUP BY day
		ORDER BY day`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily statistics: %w", err)
	}
	defer rows.Close()

	var buckets []DayBucket
	for rows.Next() {
		var b DayBucket
		if err := rows.Scan(&b.Day, &b.Totals.Impressions, &b.Totals.Clicks,
			&b.Totals.Conversions, &b.Totals.Cost, &b.Totals.Revenue); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *ClickHouseStatsRepo) ByPlatform(ctx context.Context, f StatsFilter) ([]PlatformBucket, error) {
	where, args := chStatsWhere(f)
	rows, err := r.conn.Query(ctx, `
		SELECT platform,
			   toInt64(sum(impressions)), toInt64(sum(clicks)),
			   toInt64(sum(conversions)), toFloat64(sum(cost)),
			   toFloat64(sum(revenue))
		FROM statistics `+where+`
		GROUP BY platform`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate platform statistics: %w", err)
	}
	defer rows.Close()

	var buckets []PlatformBucket
	for rows.Next() {
		var b PlatformBucket
		if err := rows.Scan(&b.Platform, &b.Totals.Impressions, &b.Totals.Clicks,
			&b.Totals.Conversions, &b.Totals.Cost, &b.Totals.Revenue); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

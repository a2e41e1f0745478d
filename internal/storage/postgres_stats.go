package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStatsRepo implements StatsRepo over the statistics table.
type PostgresStatsRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresStatsRepo(pool *pgxpool.Pool) *PostgresStatsRepo {
	return &PostgresStatsRepo{pool: pool}
}

// statsWhere builds the common filter clause. userId is always bound;
// platform and planId only when present.
func statsWhere(f StatsFilter) (string, []any) {
	where := `WHERE user_id = $1 AND date >= $2 AND date <= $3`
	args := []any{f.UserID, f.Start, f.End}
	if f.Platform != "" {
		args = append(args, f.Platform)
		where += ` AND platform = $` + strconv.Itoa(len(args))
	}
	if f.PlanID != "" {
		args = append(args, f.PlanID)
		where += ` AND plan_id = $` + strconv.Itoa(len(args))
	}
	return where, args
}

func (r *PostgresStatsRepo) Summarize(ctx context.Context, f StatsFilter) (StatTotals, error) {
	where, args := statsWhere(f)
	var t StatTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(impressions), 0), COALESCE(SUM(clicks), 0),
			   COALESCE(SUM(conversions), 0), COALESCE(SUM(cost), 0),
			   COALESCE(SUM(revenue), 0)
		FROM statistics `+where,
		args...).Scan(&t.Impressions, &t.Clicks, &t.Conversions, &t.Cost, &t.Revenue)
	if err != nil {
		return StatTotals{}, fmt.Errorf("failed to summarize statistics: %w", err)
	}
	return t, nil
}

func (r *PostgresStatsRepo) TrendByDay(ctx context.Context, f StatsFilter) ([]DayBucket, error) {
	where, args := statsWhere(f)
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD') AS day,
			   SUM(impressions), SUM(clicks), SUM(conversions),
			   SUM(cost), SUM(revenue)
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

func (r *PostgresStatsRepo) ByPlatform(ctx context.Context, f StatsFilter) ([]PlatformBucket, error) {
	where, args := statsWhere(f)
	rows, err := r.pool.Query(ctx, `
		SELECT platform,
			   SUM(impressions), SUM(clicks), SUM(conversions),
			   SUM(cost), SUM(revenue)
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

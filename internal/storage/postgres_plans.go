package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/adboardhq/adboard/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPlanRepo implements PlanRepo using PostgreSQL. Targeting is
// stored as a jsonb column.
type PostgresPlanRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepo(pool *pgxpool.Pool) *PostgresPlanRepo {
	return &PostgresPlanRepo{pool: pool}
}

const planColumns = `id, user_id, account_id, platform, plan_name, plan_id,
	status, budget, daily_budget, start_date, end_date, targeting,
	created_at, updated_at`

func (r *PostgresPlanRepo) Create(ctx context.Context, p *models.AdPlan) error {
	targetingJSON, err := json.Marshal(p.Targeting)
	if err != nil {
		return fmt.Errorf("failed to marshal targeting: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO ad_plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.ID, p.UserID, p.AccountID, p.Platform, p.PlanName, p.PlanID,
		p.Status, p.Budget, p.DailyBudget, p.StartDate, p.EndDate, targetingJSON,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ad plan: %w", err)
	}
	return nil
}

func (r *PostgresPlanRepo) GetByID(ctx context.Context, id, userID string) (*models.AdPlan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+planColumns+` FROM ad_plans WHERE id = $1 AND user_id = $2
	`, id, userID)
	p, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ad plan: %w", err)
	}
	return p, nil
}

func (r *PostgresPlanRepo) List(ctx context.Context, userID string, f models.PlanFilter, page Page) ([]*models.AdPlan, int64, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if f.Platform != "" {
		args = append(args, f.Platform)
		where += ` AND platform = $` + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if f.AccountID != "" {
		args = append(args, f.AccountID)
		where += ` AND account_id = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM ad_plans `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ad plans: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT `+planColumns+` FROM ad_plans `+where+`
		ORDER BY created_at DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ad plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.AdPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, p)
	}
	return plans, total, rows.Err()
}

func (r *PostgresPlanRepo) Update(ctx context.Context, p *models.AdPlan) error {
	targetingJSON, err := json.Marshal(p.Targeting)
	if err != nil {
		return fmt.Errorf("failed to marshal targeting: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE ad_plans SET
			plan_name = $3, status = $4, budget = $5, daily_budget = $6,
			start_date = $7, end_date = $8, targeting = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2
	`, p.ID, p.UserID, p.PlanName, p.Status, p.Budget, p.DailyBudget,
		p.StartDate, p.EndDate, targetingJSON, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update ad plan: %w", err)
	}
	return nil
}

func (r *PostgresPlanRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ad_plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete ad plan: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresPlanRepo) UpdateStatusBatch(ctx context.Context, userID string, ids []string, status string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ad_plans SET status = $3, updated_at = now()
		WHERE user_id = $1 AND id = ANY($2)
	`, userID, ids, status)
	if err != nil {
		return 0, fmt.Errorf("failed to batch update plan status: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresPlanRepo) DeleteBatch(ctx context.Context, userID string, ids []string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM ad_plans WHERE user_id = $1 AND id = ANY($2)
	`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to batch delete plans: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanPlan(row pgx.Row) (*models.AdPlan, error) {
	var p models.AdPlan
	var targetingJSON []byte
	err := row.Scan(
		&p.ID, &p.UserID, &p.AccountID, &p.Platform, &p.PlanName, &p.PlanID,
		&p.Status, &p.Budget, &p.DailyBudget, &p.StartDate, &p.EndDate, &targetingJSON,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(targetingJSON) > 0 {
		if err := json.Unmarshal(targetingJSON, &p.Targeting); err != nil {
			return nil, fmt.Errorf("failed to parse targeting: %w", err)
		}
	}
	return &p, nil
}

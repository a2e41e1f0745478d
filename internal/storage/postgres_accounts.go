package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/adboardhq/adboard/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAccountRepo implements AccountRepo using PostgreSQL.
type PostgresAccountRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountRepo(pool *pgxpool.Pool) *PostgresAccountRepo {
	return &PostgresAccountRepo{pool: pool}
}

const accountColumns = `id, user_id, platform, account_name, account_id,
	access_token, refresh_token, expires_in, token_expires_at, status,
	balance, currency, total_spent, today_spent, total_plans, active_plans,
	last_sync_at, created_at, updated_at`

func (r *PostgresAccountRepo) Create(ctx context.Context, a *models.AdAccount) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ad_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, a.ID, a.UserID, a.Platform, a.AccountName, a.AccountID,
		a.AccessToken, a.RefreshToken, a.ExpiresIn, a.TokenExpiresAt, a.Status,
		a.Balance, a.Currency, a.Stats.TotalSpent, a.Stats.TodaySpent,
		a.Stats.TotalPlans, a.Stats.ActivePlans, a.LastSyncAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ad account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepo) GetByID(ctx context.Context, id, userID string) (*models.AdAccount, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM ad_accounts WHERE id = $1 AND user_id = $2
	`, id, userID)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ad account: %w", err)
	}
	return a, nil
}

func (r *PostgresAccountRepo) List(ctx context.Context, userID string, f models.AccountFilter, page Page) ([]*models.AdAccount, int64, error) {
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

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM ad_accounts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ad accounts: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM ad_accounts `+where+`
		ORDER BY created_at DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ad accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.AdAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

func (r *PostgresAccountRepo) Update(ctx context.Context, a *models.AdAccount) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE ad_accounts SET
			account_name = $3, access_token = $4, refresh_token = $5,
			expires_in = $6, token_expires_at = $7, status = $8,
			balance = $9, currency = $10, total_spent = $11, today_spent = $12,
			total_plans = $13, active_plans = $14, last_sync_at = $15, updated_at = $16
		WHERE id = $1 AND user_id = $2
	`, a.ID, a.UserID, a.AccountName, a.AccessToken, a.RefreshToken,
		a.ExpiresIn, a.TokenExpiresAt, a.Status,
		a.Balance, a.Currency, a.Stats.TotalSpent, a.Stats.TodaySpent,
		a.Stats.TotalPlans, a.Stats.ActivePlans, a.LastSyncAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update ad account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ad_accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete ad account: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresAccountRepo) ExistsByPlatformAccount(ctx context.Context, platform, accountID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM ad_accounts WHERE platform = $1 AND account_id = $2)
	`, platform, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account uniqueness: %w", err)
	}
	return exists, nil
}

func scanAccount(row pgx.Row) (*models.AdAccount, error) {
	var a models.AdAccount
	err := row.Scan(
		&a.ID, &a.UserID, &a.Platform, &a.AccountName, &a.AccountID,
		&a.AccessToken, &a.RefreshToken, &a.ExpiresIn, &a.TokenExpiresAt, &a.Status,
		&a.Balance, &a.Currency, &a.Stats.TotalSpent, &a.Stats.TodaySpent,
		&a.Stats.TotalPlans, &a.Stats.ActivePlans, &a.LastSyncAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

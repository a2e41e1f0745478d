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

// PostgresCreativeRepo implements CreativeRepo using PostgreSQL.
// Materials are stored as a jsonb array of upload URLs.
type PostgresCreativeRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCreativeRepo(pool *pgxpool.Pool) *PostgresCreativeRepo {
	return &PostgresCreativeRepo{pool: pool}
}

const creativeColumns = `id, user_id, plan_id, creative_name, type, materials,
	title, description, link, status, created_at, updated_at`

func (r *PostgresCreativeRepo) Create(ctx context.Context, c *models.AdCreative) error {
	materialsJSON, err := json.Marshal(c.Materials)
	if err != nil {
		return fmt.Errorf("failed to marshal materials: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO ad_creatives (`+creativeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, c.ID, c.UserID, c.PlanID, c.CreativeName, c.Type, materialsJSON,
		c.Title, c.Description, c.Link, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ad creative: %w", err)
	}
	return nil
}

func (r *PostgresCreativeRepo) GetByID(ctx context.Context, id, userID string) (*models.AdCreative, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+creativeColumns+` FROM ad_creatives WHERE id = $1 AND user_id = $2
	`, id, userID)
	c, err := scanCreative(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ad creative: %w", err)
	}
	return c, nil
}

func (r *PostgresCreativeRepo) List(ctx context.Context, userID string, f models.CreativeFilter, page Page) ([]*models.AdCreative, int64, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if f.PlanID != "" {
		args = append(args, f.PlanID)
		where += ` AND plan_id = $` + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM ad_creatives `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ad creatives: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT `+creativeColumns+` FROM ad_creatives `+where+`
		ORDER BY created_at DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ad creatives: %w", err)
	}
	defer rows.Close()

	var creatives []*models.AdCreative
	for rows.Next() {
		c, err := scanCreative(rows)
		if err != nil {
			return nil, 0, err
		}
		creatives = append(creatives, c)
	}
	return creatives, total, rows.Err()
}

func (r *PostgresCreativeRepo) Update(ctx context.Context, c *models.AdCreative) error {
	materialsJSON, err := json.Marshal(c.Materials)
	if err != nil {
		return fmt.Errorf("failed to marshal materials: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE ad_creatives SET
			creative_name = $3, type = $4, materials = $5, title = $6,
			description = $7, link = $8, status = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2
	`, c.ID, c.UserID, c.CreativeName, c.Type, materialsJSON, c.Title,
		c.Description, c.Link, c.Status, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update ad creative: %w", err)
	}
	return nil
}

func (r *PostgresCreativeRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ad_creatives WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete ad creative: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanCreative(row pgx.Row) (*models.AdCreative, error) {
	var c models.AdCreative
	var materialsJSON []byte
	err := row.Scan(
		&c.ID, &c.UserID, &c.PlanID, &c.CreativeName, &c.Type, &materialsJSON,
		&c.Title, &c.Description, &c.Link, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(materialsJSON) > 0 {
		if err := json.Unmarshal(materialsJSON, &c.Materials); err != nil {
			return nil, fmt.Errorf("failed to parse materials: %w", err)
		}
	}
	return &c, nil
}

package storage

import (
	"context"
	"time"

	"github.com/adboardhq/adboard/internal/models"
)

// Page is a 1-based pagination request.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// UserRepo defines operations for user storage. Get methods return
// (nil, nil) when no row matches.
type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

// AccountRepo defines operations for ad account storage. Every read,
// update, and delete is scoped to the owning user.
type AccountRepo interface {
	Create(ctx context.Context, a *models.AdAccount) error
	GetByID(ctx context.Context, id, userID string) (*models.AdAccount, error)
	List(ctx context.Context, userID string, f models.AccountFilter, page Page) ([]*models.AdAccount, int64, error)
	Update(ctx context.Context, a *models.AdAccount) error
	Delete(ctx context.Context, id, userID string) (bool, error)
	// ExistsByPlatformAccount checks the system-wide (platform,
	// accountId) uniqueness constraint.
	ExistsByPlatformAccount(ctx context.Context, platform, accountID string) (bool, error)
}

// PlanRepo defines operations for ad plan storage.
type PlanRepo interface {
	Create(ctx context.Context, p *models.AdPlan) error
	GetByID(ctx context.Context, id, userID string) (*models.AdPlan, error)
	List(ctx context.Context, userID string, f models.PlanFilter, page Page) ([]*models.AdPlan, int64, error)
	Update(ctx context.Context, p *models.AdPlan) error
	Delete(ctx context.Context, id, userID string) (bool, error)
	// UpdateStatusBatch sets status on the caller's plans among ids and
	// returns the number of rows changed.
	UpdateStatusBatch(ctx context.Context, userID string, ids []string, status string) (int64, error)
	// DeleteBatch removes the caller's plans among ids and returns the
	// number of rows removed.
	DeleteBatch(ctx context.Context, userID string, ids []string) (int64, error)
}

// CreativeRepo defines operations for ad creative storage.
type CreativeRepo interface {
	Create(ctx context.Context, c *models.AdCreative) error
	GetByID(ctx context.Context, id, userID string) (*models.AdCreative, error)
	List(ctx context.Context, userID string, f models.CreativeFilter, page Page) ([]*models.AdCreative, int64, error)
	Update(ctx context.Context, c *models.AdCreative) error
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// StatsFilter scopes a statistics aggregation. UserID is mandatory;
// empty Platform or PlanID means no constraint. The window is
// inclusive on both ends.
type StatsFilter struct {
	UserID   string
	Platform string
	PlanID   string
	Start    time.Time
	End      time.Time
}

// StatTotals is a sum of raw counters over some grouping.
type StatTotals struct {
	Impressions int64
	Clicks      int64
	Conversions int64
	Cost        float64
	Revenue     float64
}

// DayBucket is one calendar day of totals. Day is the stored date
// formatted as YYYY-MM-DD.
type DayBucket struct {
	Day    string
	Totals StatTotals
}

// PlatformBucket is one platform's totals.
type PlatformBucket struct {
	Platform string
	Totals   StatTotals
}

// StatsRepo defines read-only aggregations over stat records. Rows are
// written by the external sync process, never by this service.
type StatsRepo interface {
	Summarize(ctx context.Context, f StatsFilter) (StatTotals, error)
	// TrendByDay returns buckets sorted ascending by day string.
	TrendByDay(ctx context.Context, f StatsFilter) ([]DayBucket, error)
	ByPlatform(ctx context.Context, f StatsFilter) ([]PlatformBucket, error)
}

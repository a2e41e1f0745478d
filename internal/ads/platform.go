package ads

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/adboardhq/adboard/internal/config"
	"github.com/adboardhq/adboard/internal/models"
)

// PlatformClient talks to an external ad platform on behalf of a bound
// account.
type PlatformClient interface {
	// AuthURL returns the OAuth authorization URL for the platform.
	AuthURL(platform string) (string, error)
	// Sync fetches current balance and spend counters for the account.
	Sync(ctx context.Context, account *models.AdAccount) (*models.SyncResult, error)
}

// StubPlatformClient stands in for real platform SDKs. It produces a
// well-formed OAuth URL from configuration and synthesizes plausible
// sync figures, so the rest of the system can be exercised without
// platform credentials.
type StubPlatformClient struct {
	cfg config.OAuthConfig
}

func NewStubPlatformClient(cfg config.OAuthConfig) *StubPlatformClient {
	return &StubPlatformClient{cfg: cfg}
}

var authEndpoints = map[string]string{
	models.PlatformDouyin:   "https://open.oceanengine.com/audit/oauth.html",
	models.PlatformKuaishou: "https://developers.e.kuaishou.com/tools/authorize",
	models.PlatformWechat:   "https://open.weixin.qq.com/connect/oauth2/authorize",
	models.PlatformWeibo:    "https://api.weibo.com/oauth2/authorize",
	models.PlatformZhihu:    "https://www.zhihu.com/oauth/authorize",
	models.PlatformMeiyou:   "https://open.meiyou.com/oauth/authorize",
}

func (c *StubPlatformClient) AuthURL(platform string) (string, error) {
	endpoint, ok := authEndpoints[platform]
	if !ok {
		return "", fmt.Errorf("no auth endpoint for platform %q", platform)
	}
	q := url.Values{}
	q.Set("app_id", c.cfg.AppID)
	q.Set("redirect_uri", c.cfg.BaseURL+"/api/account/oauth/callback/"+platform)
	q.Set("state", uuid.NewString())
	return endpoint + "?" + q.Encode(), nil
}

func (c *StubPlatformClient) Sync(_ context.Context, account *models.AdAccount) (*models.SyncResult, error) {
	// Synthesized figures; a real client would call the platform's
	// reporting API with the stored tokens.
	totalSpent := 1000 + rand.Float64()*9000
	todaySpent := rand.Float64() * 500
	totalPlans := 5 + rand.Intn(20)
	return &models.SyncResult{
		Balance: 10000 + rand.Float64()*90000,
		Stats: models.AccountStats{
			TotalSpent:  totalSpent,
			TodaySpent:  todaySpent,
			TotalPlans:  totalPlans,
			ActivePlans: rand.Intn(totalPlans + 1),
		},
		LastSyncAt: time.Now(),
	}, nil
}

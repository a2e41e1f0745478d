package models

import (
	"errors"
	"time"
)

// Supported ad platforms.
const (
	PlatformDouyin   = "douyin"
	PlatformKuaishou = "kuaishou"
	PlatformWechat   = "wechat"
	PlatformWeibo    = "weibo"
	PlatformZhihu    = "zhihu"
	PlatformMeiyou   = "meiyou"
)

// Platforms lists every supported platform.
var Platforms = []string{
	PlatformDouyin, PlatformKuaishou, PlatformWechat,
	PlatformWeibo, PlatformZhihu, PlatformMeiyou,
}

// ValidPlatform reports whether p is a known platform.
func ValidPlatform(p string) bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Ad account states.
const (
	AccountActive       = "active"
	AccountExpired      = "expired"
	AccountError        = "error"
	AccountUnauthorized = "unauthorized"
)

// AccountStats is the platform-reported spend and plan counters,
// refreshed by the sync operation.
type AccountStats struct {
	TotalSpent  float64 `json:"totalSpent"`
	TodaySpent  float64 `json:"todaySpent"`
	TotalPlans  int     `json:"totalPlans"`
	ActivePlans int     `json:"activePlans"`
}

// AdAccount links a dashboard user to one account on an external ad
// platform. Tokens are stored but never serialized in API responses.
type AdAccount struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	Platform       string       `json:"platform"`
	AccountName    string       `json:"accountName"`
	AccountID      string       `json:"accountId"`
	AccessToken    string       `json:"-"`
	RefreshToken   string       `json:"-"`
	ExpiresIn      int64        `json:"expiresIn"`
	TokenExpiresAt time.Time    `json:"tokenExpiresAt"`
	Status         string       `json:"status"`
	Balance        float64      `json:"balance"`
	Currency       string       `json:"currency"`
	Stats          AccountStats `json:"stats"`
	LastSyncAt     time.Time    `json:"lastSyncAt"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// AccountInput carries an account creation request.
type AccountInput struct {
	Platform     string `json:"platform"`
	AccountName  string `json:"accountName"`
	AccountID    string `json:"accountId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (in *AccountInput) Validate() error {
	if !ValidPlatform(in.Platform) {
		return errors.New("platform is invalid")
	}
	if in.AccountName == "" {
		return errors.New("accountName is required")
	}
	if in.AccountID == "" {
		return errors.New("accountId is required")
	}
	if in.AccessToken == "" {
		return errors.New("accessToken is required")
	}
	if in.RefreshToken == "" {
		return errors.New("refreshToken is required")
	}
	if in.ExpiresIn <= 0 {
		return errors.New("expiresIn must be positive")
	}
	return nil
}

// AccountUpdate is the allow-list of account fields a caller may change.
// Supplying AccessToken replaces the whole credential set and
// reactivates the account.
type AccountUpdate struct {
	AccountName  *string `json:"accountName"`
	AccessToken  *string `json:"accessToken"`
	RefreshToken *string `json:"refreshToken"`
	ExpiresIn    *int64  `json:"expiresIn"`
}

func (u *AccountUpdate) Validate() error {
	if u.AccountName != nil && *u.AccountName == "" {
		return errors.New("accountName must not be empty")
	}
	if u.AccessToken != nil {
		if u.RefreshToken == nil || *u.RefreshToken == "" {
			return errors.New("refreshToken is required when replacing accessToken")
		}
		if u.ExpiresIn == nil || *u.ExpiresIn <= 0 {
			return errors.New("expiresIn is required when replacing accessToken")
		}
	}
	return nil
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	Platform string
	Status   string
}

// SyncResult is what a platform sync returns for an account.
type SyncResult struct {
	Balance    float64      `json:"balance"`
	Stats      AccountStats `json:"stats"`
	LastSyncAt time.Time    `json:"lastSyncAt"`
}

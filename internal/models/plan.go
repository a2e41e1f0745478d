package models

import (
	"errors"
	"time"
)

// Plan and creative states.
const (
	StatusActive  = "active"
	StatusPaused  = "paused"
	StatusDeleted = "deleted"
)

// ValidStatus reports whether s is a known plan/creative status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusPaused || s == StatusDeleted
}

// Targeting restricts plan delivery. Values are labels chosen in the
// dashboard, passed through to the platform as-is.
type Targeting struct {
	Age       string   `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Regions   []string `json:"region,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// AdPlan is an advertising campaign scoped to one platform account.
// PlanID is the platform-side identifier, distinct from ID.
type AdPlan struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	AccountID   string     `json:"accountId"`
	Platform    string     `json:"platform"`
	PlanName    string     `json:"planName"`
	PlanID      string     `json:"planId"`
	Status      string     `json:"status"`
	Budget      float64    `json:"budget"`
	DailyBudget float64    `json:"dailyBudget"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Targeting   Targeting  `json:"targeting"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PlanInput carries a plan creation request.
type PlanInput struct {
	AccountID   string     `json:"accountId"`
	Platform    string     `json:"platform"`
	PlanName    string     `json:"planName"`
	PlanID      string     `json:"planId"`
	Budget      float64    `json:"budget"`
	DailyBudget float64    `json:"dailyBudget"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Targeting   *Targeting `json:"targeting"`
}

func (in *PlanInput) Validate() error {
	if in.AccountID == "" {
		return errors.New("accountId is required")
	}
	if !ValidPlatform(in.Platform) {
		return errors.New("platform is invalid")
	}
	if in.PlanName == "" {
		return errors.New("planName is required")
	}
	if in.PlanID == "" {
		return errors.New("planId is required")
	}
	if in.Budget < 0 || in.DailyBudget < 0 {
		return errors.New("budget must not be negative")
	}
	if in.StartDate.IsZero() {
		return errors.New("startDate is required")
	}
	return nil
}

// PlanUpdate is the allow-list of plan fields a caller may change.
type PlanUpdate struct {
	PlanName    *string    `json:"planName"`
	Status      *string    `json:"status"`
	Budget      *float64   `json:"budget"`
	DailyBudget *float64   `json:"dailyBudget"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Targeting   *Targeting `json:"targeting"`
}

func (u *PlanUpdate) Validate() error {
	if u.PlanName != nil && *u.PlanName == "" {
		return errors.New("planName must not be empty")
	}
	if u.Status != nil && !ValidStatus(*u.Status) {
		return errors.New("status is invalid")
	}
	if u.Budget != nil && *u.Budget < 0 {
		return errors.New("budget must not be negative")
	}
	if u.DailyBudget != nil && *u.DailyBudget < 0 {
		return errors.New("dailyBudget must not be negative")
	}
	return nil
}

// PlanFilter narrows plan listings.
type PlanFilter struct {
	Platform  string
	Status    string
	AccountID string
}

// BatchStatusInput carries a batch status change for plans.
type BatchStatusInput struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

func (in *BatchStatusInput) Validate() error {
	if len(in.IDs) == 0 {
		return errors.New("ids is required")
	}
	if !ValidStatus(in.Status) {
		return errors.New("status is invalid")
	}
	return nil
}

// BatchDeleteInput carries a batch delete for plans.
type BatchDeleteInput struct {
	IDs []string `json:"ids"`
}

func (in *BatchDeleteInput) Validate() error {
	if len(in.IDs) == 0 {
		return errors.New("ids is required")
	}
	return nil
}

package ads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/models"
	"github.com/adboardhq/adboard/internal/storage"
)

// PlanService implements ad plan CRUD and the batch operations.
type PlanService struct {
	plans    storage.PlanRepo
	accounts storage.AccountRepo
	logger   *zap.Logger
}

func NewPlanService(plans storage.PlanRepo, accounts storage.AccountRepo, logger *zap.Logger) *PlanService {
	return &PlanService{
		plans:    plans,
		accounts: accounts,
		logger:   logger,
	}
}

// Create records a plan under one of the user's accounts. The account
// must belong to the user.
func (s *PlanService) Create(ctx context.Context, userID string, in models.PlanInput) (*models.AdPlan, error) {
	if err := in.Validate(); err != nil {
		return nil, AsValidation(err)
	}

	account, err := s.accounts.GetByID(ctx, in.AccountID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	if account.Platform != in.Platform {
		return nil, NewValidationError("platform does not match the account")
	}

	now := time.Now()
	plan := &models.AdPlan{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountID:   in.AccountID,
		Platform:    in.Platform,
		PlanName:    in.PlanName,
		PlanID:      in.PlanID,
		Status:      models.StatusActive,
		Budget:      in.Budget,
		DailyBudget: in.DailyBudget,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Targeting != nil {
		plan.Targeting = *in.Targeting
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.logger.Info("ad plan created",
		zap.String("plan_id", plan.ID),
		zap.String("user_id", userID),
		zap.String("platform", plan.Platform),
	)
	return plan, nil
}

// Get returns one of the user's plans.
func (s *PlanService) Get(ctx context.Context, userID, id string) (*models.AdPlan, error) {
	plan, err := s.plans.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrNotFound
	}
	return plan, nil
}

// List returns a page of the user's plans, newest first.
func (s *PlanService) List(ctx context.Context, userID string, f models.PlanFilter, page storage.Page) ([]*models.AdPlan, int64, error) {
	if f.Platform != "" && !models.ValidPlatform(f.Platform) {
		return nil, 0, NewValidationError("platform is invalid")
	}
	if f.Status != "" && !models.ValidStatus(f.Status) {
		return nil, 0, NewValidationError("status is invalid")
	}
	plans, total, err := s.plans.List(ctx, userID, f, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, total, nil
}

// Update applies the allowed plan fields and returns the updated plan.
func (s *PlanService) Update(ctx context.Context, userID, id string, upd models.PlanUpdate) (*models.AdPlan, error) {
	if err := upd.Validate(); err != nil {
		return nil, AsValidation(err)
	}
	plan, err := s.plans.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrNotFound
	}

	if upd.PlanName != nil {
		plan.PlanName = *upd.PlanName
	}
	if upd.Status != nil {
		plan.Status = *upd.Status
	}
	if upd.Budget != nil {
		plan.Budget = *upd.Budget
	}
	if upd.DailyBudget != nil {
		plan.DailyBudget = *upd.DailyBudget
	}
	if upd.StartDate != nil {
		plan.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		plan.EndDate = upd.EndDate
	}
	if upd.Targeting != nil {
		plan.Targeting = *upd.Targeting
	}
	plan.UpdatedAt = time.Now()

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return plan, nil
}

// Delete removes one of the user's plans.
func (s *PlanService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.plans.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.Info("ad plan deleted",
		zap.String("plan_id", id),
		zap.String("user_id", userID),
	)
	return nil
}

// BatchUpdateStatus sets status on the caller's plans among ids and
// returns the number changed. IDs the caller does not own are skipped.
func (s *PlanService) BatchUpdateStatus(ctx context.Context, userID string, in models.BatchStatusInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, AsValidation(err)
	}
	n, err := s.plans.UpdateStatusBatch(ctx, userID, in.IDs, in.Status)
	if err != nil {
		return 0, fmt.Errorf("failed to update plans: %w", err)
	}
	s.logger.Info("ad plans batch updated",
		zap.String("user_id", userID),
		zap.String("status", in.Status),
		zap.Int64("updated", n),
	)
	return n, nil
}

// BatchDelete removes the caller's plans among ids and returns the
// number removed.
func (s *PlanService) BatchDelete(ctx context.Context, userID string, in models.BatchDeleteInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, AsValidation(err)
	}
	n, err := s.plans.DeleteBatch(ctx, userID, in.IDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete plans: %w", err)
	}
	s.logger.Info("ad plans batch deleted",
		zap.String("user_id", userID),
		zap.Int64("deleted", n),
	)
	return n, nil
}

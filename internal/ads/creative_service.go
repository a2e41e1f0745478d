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

// CreativeService implements ad creative CRUD. A creative always hangs
// off one of the user's plans.
type CreativeService struct {
	creatives storage.CreativeRepo
	plans     storage.PlanRepo
	logger    *zap.Logger
}

func NewCreativeService(creatives storage.CreativeRepo, plans storage.PlanRepo, logger *zap.Logger) *CreativeService {
	return &CreativeService{
		creatives: creatives,
		plans:     plans,
		logger:    logger,
	}
}

// Create records a creative under one of the user's plans.
func (s *CreativeService) Create(ctx context.Context, userID string, in models.CreativeInput) (*models.AdCreative, error) {
	if err := in.Validate(); err != nil {
		return nil, AsValidation(err)
	}

	plan, err := s.plans.GetByID(ctx, in.PlanID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrNotFound
	}

	now := time.Now()
	creative := &models.AdCreative{
		ID:           uuid.NewString(),
		UserID:       userID,
		PlanID:       in.PlanID,
		CreativeName: in.CreativeName,
		Type:         in.Type,
		Materials:    in.Materials,
		Title:        in.Title,
		Description:  in.Description,
		Link:         in.Link,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.creatives.Create(ctx, creative); err != nil {
		return nil, fmt.Errorf("failed to create creative: %w", err)
	}

	s.logger.Info("ad creative created",
		zap.String("creative_id", creative.ID),
		zap.String("user_id", userID),
		zap.String("plan_id", in.PlanID),
	)
	return creative, nil
}

// Get returns one of the user's creatives.
func (s *CreativeService) Get(ctx context.Context, userID, id string) (*models.AdCreative, error) {
	creative, err := s.creatives.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creative: %w", err)
	}
	if creative == nil {
		return nil, ErrNotFound
	}
	return creative, nil
}

// List returns a page of the user's creatives, newest first.
func (s *CreativeService) List(ctx context.Context, userID string, f models.CreativeFilter, page storage.Page) ([]*models.AdCreative, int64, error) {
	if f.Status != "" && !models.ValidStatus(f.Status) {
		return nil, 0, NewValidationError("status is invalid")
	}
	creatives, total, err := s.creatives.List(ctx, userID, f, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list creatives: %w", err)
	}
	return creatives, total, nil
}

// Update applies the allowed creative fields and returns the updated
// creative.
func (s *CreativeService) Update(ctx context.Context, userID, id string, upd models.CreativeUpdate) (*models.AdCreative, error) {
	if err := upd.Validate(); err != nil {
		return nil, AsValidation(err)
	}
	creative, err := s.creatives.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creative: %w", err)
	}
	if creative == nil {
		return nil, ErrNotFound
	}

	if upd.CreativeName != nil {
		creative.CreativeName = *upd.CreativeName
	}
	if upd.Status != nil {
		creative.Status = *upd.Status
	}
	if upd.Materials != nil {
		creative.Materials = *upd.Materials
	}
	if upd.Title != nil {
		creative.Title = *upd.Title
	}
	if upd.Description != nil {
		creative.Description = *upd.Description
	}
	if upd.Link != nil {
		creative.Link = *upd.Link
	}
	creative.UpdatedAt = time.Now()

	if err := s.creatives.Update(ctx, creative); err != nil {
		return nil, fmt.Errorf("failed to update creative: %w", err)
	}
	return creative, nil
}

// Delete removes one of the user's creatives.
func (s *CreativeService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.creatives.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete creative: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.Info("ad creative deleted",
		zap.String("creative_id", id),
		zap.String("user_id", userID),
	)
	return nil
}

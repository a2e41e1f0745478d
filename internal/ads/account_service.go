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

// AccountService implements ad account CRUD, OAuth entry, and platform
// sync. Every operation is scoped to the calling user.
type AccountService struct {
	accounts storage.AccountRepo
	platform PlatformClient
	logger   *zap.Logger
}

func NewAccountService(accounts storage.AccountRepo, platform PlatformClient, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		platform: platform,
		logger:   logger,
	}
}

// Create binds a platform account to the user. The (platform, accountId)
// pair must be unique across all users.
func (s *AccountService) Create(ctx context.Context, userID string, in models.AccountInput) (*models.AdAccount, error) {
	if err := in.Validate(); err != nil {
		return nil, AsValidation(err)
	}

	exists, err := s.accounts.ExistsByPlatformAccount(ctx, in.Platform, in.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to check account uniqueness: %w", err)
	}
	if exists {
		return nil, NewValidationError("account is already bound")
	}

	now := time.Now()
	account := &models.AdAccount{
		ID:             uuid.NewString(),
		UserID:         userID,
		Platform:       in.Platform,
		AccountName:    in.AccountName,
		AccountID:      in.AccountID,
		AccessToken:    in.AccessToken,
		RefreshToken:   in.RefreshToken,
		ExpiresIn:      in.ExpiresIn,
		TokenExpiresAt: now.Add(time.Duration(in.ExpiresIn) * time.Second),
		Status:         models.AccountActive,
		Currency:       "CNY",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("ad account created",
		zap.String("account_id", account.ID),
		zap.String("user_id", userID),
		zap.String("platform", account.Platform),
	)
	return account, nil
}

// Get returns one of the user's accounts.
func (s *AccountService) Get(ctx context.Context, userID, id string) (*models.AdAccount, error) {
	account, err := s.accounts.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

// List returns a page of the user's accounts, newest first.
func (s *AccountService) List(ctx context.Context, userID string, f models.AccountFilter, page storage.Page) ([]*models.AdAccount, int64, error) {
	if f.Platform != "" && !models.ValidPlatform(f.Platform) {
		return nil, 0, NewValidationError("platform is invalid")
	}
	accounts, total, err := s.accounts.List(ctx, userID, f, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, total, nil
}

// Update applies the allowed account fields. Replacing the access token
// installs the full credential set and reactivates the account.
func (s *AccountService) Update(ctx context.Context, userID, id string, upd models.AccountUpdate) (*models.AdAccount, error) {
	if err := upd.Validate(); err != nil {
		return nil, AsValidation(err)
	}
	account, err := s.accounts.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}

	if upd.AccountName != nil {
		account.AccountName = *upd.AccountName
	}
	if upd.AccessToken != nil {
		account.AccessToken = *upd.AccessToken
		account.RefreshToken = *upd.RefreshToken
		account.ExpiresIn = *upd.ExpiresIn
		account.TokenExpiresAt = time.Now().Add(time.Duration(*upd.ExpiresIn) * time.Second)
		account.Status = models.AccountActive
	}
	account.UpdatedAt = time.Now()

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// Delete removes one of the user's accounts.
func (s *AccountService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.accounts.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.Info("ad account deleted",
		zap.String("account_id", id),
		zap.String("user_id", userID),
	)
	return nil
}

// AuthURL returns the OAuth authorization URL for a platform.
func (s *AccountService) AuthURL(_ context.Context, platform string) (string, error) {
	if !models.ValidPlatform(platform) {
		return "", NewValidationError("platform is invalid")
	}
	return s.platform.AuthURL(platform)
}

// Sync refreshes balance and spend counters from the platform and
// stores the result on the account.
func (s *AccountService) Sync(ctx context.Context, userID, id string) (*models.AdAccount, error) {
	account, err := s.accounts.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}

	res, err := s.platform.Sync(ctx, account)
	if err != nil {
		account.Status = models.AccountError
		account.UpdatedAt = time.Now()
		if uerr := s.accounts.Update(ctx, account); uerr != nil {
			s.logger.Warn("failed to record sync failure",
				zap.String("account_id", id),
				zap.Error(uerr),
			)
		}
		return nil, fmt.Errorf("failed to sync account: %w", err)
	}

	account.Balance = res.Balance
	account.Stats = res.Stats
	account.LastSyncAt = res.LastSyncAt
	account.UpdatedAt = time.Now()

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	s.logger.Info("ad account synced",
		zap.String("account_id", id),
		zap.String("platform", account.Platform),
	)
	return account, nil
}

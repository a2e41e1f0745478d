package ads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/auth"
	"github.com/adboardhq/adboard/internal/models"
	"github.com/adboardhq/adboard/internal/storage"
)

// UserService implements registration, login, and profile management.
type UserService struct {
	users  storage.UserRepo
	hasher *auth.Hasher
	tokens *auth.TokenProvider
	logger *zap.Logger
}

func NewUserService(users storage.UserRepo, hasher *auth.Hasher, tokens *auth.TokenProvider, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new user. Email and phone must be unique across
// all users.
func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, AsValidation(err)
	}

	byEmail, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	byPhone, err := s.users.GetByPhone(ctx, in.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	switch {
	case byEmail != nil && byPhone != nil:
		return nil, NewValidationError("email and phone are already registered")
	case byEmail != nil:
		return nil, NewValidationError("email is already registered")
	case byPhone != nil:
		return nil, NewValidationError("phone is already registered")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Status:       models.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)
	return user, nil
}

// Login authenticates by email or phone and returns a signed token
// alongside the user.
func (s *UserService) Login(ctx context.Context, in models.LoginInput) (string, *models.User, error) {
	if err := in.Validate(); err != nil {
		return "", nil, AsValidation(err)
	}

	var (
		user *models.User
		err  error
	)
	if in.Email != "" {
		user, err = s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	} else {
		user, err = s.users.GetByPhone(ctx, strings.TrimSpace(in.Phone))
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.Status != models.UserActive {
		return "", nil, ErrAccountDisabled
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return token, user, nil
}

// GetProfile returns the user's own record.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfile applies the allowed profile fields and returns the
// updated record.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error) {
	if err := upd.Validate(); err != nil {
		return nil, AsValidation(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if upd.Username != nil {
		user.Username = strings.TrimSpace(*upd.Username)
	}
	if upd.Avatar != nil {
		user.Avatar = *upd.Avatar
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the old password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in models.ChangePasswordInput) error {
	if err := in.Validate(); err != nil {
		return AsValidation(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}
	if err := s.hasher.Compare(user.PasswordHash, in.OldPassword); err != nil {
		return NewValidationError("old password is incorrect")
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// CheckEmail reports whether an email is already registered, returning
// the matching user when one exists.
func (s *UserService) CheckEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !models.ValidEmail(email) {
		return nil, NewValidationError("email is invalid")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	return user, nil
}

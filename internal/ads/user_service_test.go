package ads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/auth"
	"github.com/adboardhq/adboard/internal/models"
	"github.com/adboardhq/adboard/internal/storage"
)

func newUserService() *UserService {
	return NewUserService(
		storage.NewInMemoryUserRepo(),
		auth.NewHasher(4),
		auth.NewTokenProvider("test-secret", time.Hour),
		zap.NewNop(),
	)
}

func validRegistration() models.RegisterInput {
	return models.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Phone:    "13800138000",
		Password: "secret123",
	}
}

func TestRegister(t *testing.T) {
	svc := newUserService()

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.UserActive, user.Status)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc := newUserService()

	in := validRegistration()
	in.Email = "  Alice@Example.COM "
	user, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	// The normalized form collides with a differently-cased duplicate.
	dup := validRegistration()
	dup.Email = "ALICE@example.com"
	dup.Phone = "13900139000"
	_, err = svc.Register(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "email")
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc := newUserService()
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	dup := validRegistration()
	dup.Email = "other@example.com"
	_, err = svc.Register(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "phone")
}

func TestRegisterDuplicateBoth(t *testing.T) {
	svc := newUserService()
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "phone")
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService()

	tests := []struct {
		name   string
		mutate func(*models.RegisterInput)
	}{
		{"short username", func(in *models.RegisterInput) { in.Username = "a" }},
		{"bad email", func(in *models.RegisterInput) { in.Email = "not-an-email" }},
		{"bad phone", func(in *models.RegisterInput) { in.Phone = "12345" }},
		{"short password", func(in *models.RegisterInput) { in.Password = "abc" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestLogin(t *testing.T) {
	svc := newUserService()
	registered, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), models.LoginInput{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)

	// Phone login works too.
	token2, _, err := svc.Login(context.Background(), models.LoginInput{
		Phone:    "13800138000",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token2)
}

func TestLoginFailures(t *testing.T) {
	svc := newUserService()
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), models.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), models.LoginInput{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), models.LoginInput{Password: "secret123"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestLoginDisabledAccount(t *testing.T) {
	svc := newUserService()
	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	user.Status = models.UserInactive
	require.NoError(t, svc.users.Update(context.Background(), user))

	_, _, err = svc.Login(context.Background(), models.LoginInput{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestUpdateProfile(t *testing.T) {
	svc := newUserService()
	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	name := "alice2"
	avatar := "/uploads/avatar.png"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, models.UserUpdate{
		Username: &name,
		Avatar:   &avatar,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, avatar, updated.Avatar)
	// Untouched fields survive.
	assert.Equal(t, user.Email, updated.Email)
}

func TestChangePassword(t *testing.T) {
	svc := newUserService()
	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordInput{
		OldPassword: "nope",
		NewPassword: "newsecret",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordInput{
		OldPassword: "secret123",
		NewPassword: "newsecret",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), models.LoginInput{
		Email:    "alice@example.com",
		Password: "newsecret",
	})
	require.NoError(t, err)
}

func TestCheckEmail(t *testing.T) {
	svc := newUserService()
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	user, err := svc.CheckEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice@example.com", user.Email)

	user, err = svc.CheckEmail(context.Background(), "free@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = svc.CheckEmail(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

// User account states.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Mainland mobile numbers: 11 digits starting 13-19.
	phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
)

// ValidEmail reports whether e looks like an email address.
func ValidEmail(e string) bool {
	return emailPattern.MatchString(e)
}

// User is a dashboard tenant. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Normalize lowercases and trims the email and trims the phone, matching
// how values are stored and compared for uniqueness.
func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
}

// Validate reports the first violated field.
func (in *RegisterInput) Validate() error {
	if l := len(in.Username); l < 2 || l > 20 {
		return errors.New("username must be 2-20 characters")
	}
	if !emailPattern.MatchString(in.Email) {
		return errors.New("email is invalid")
	}
	if !phonePattern.MatchString(in.Phone) {
		return errors.New("phone is invalid")
	}
	if l := len(in.Password); l < 6 || l > 20 {
		return errors.New("password must be 6-20 characters")
	}
	return nil
}

// LoginInput carries a login request. Either Email or Phone must be set.
type LoginInput struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (in *LoginInput) Validate() error {
	if in.Email == "" && in.Phone == "" {
		return errors.New("email or phone is required")
	}
	if in.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// UserUpdate is the allow-list of user profile fields a caller may change.
// Nil fields are left untouched.
type UserUpdate struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
}

func (u *UserUpdate) Validate() error {
	if u.Username != nil {
		if l := len(strings.TrimSpace(*u.Username)); l < 2 || l > 20 {
			return errors.New("username must be 2-20 characters")
		}
	}
	return nil
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (in *ChangePasswordInput) Validate() error {
	if in.OldPassword == "" {
		return errors.New("oldPassword is required")
	}
	if l := len(in.NewPassword); l < 6 || l > 20 {
		return errors.New("newPassword must be 6-20 characters")
	}
	return nil
}

package ads

import "errors"

// Sentinel errors mapped to HTTP statuses by the server layer.
var (
	// ErrNotFound covers both missing resources and resources owned by
	// another user, so callers cannot probe for foreign IDs.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials is returned on login when the identifier is
	// unknown or the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned on login for inactive users.
	ErrAccountDisabled = errors.New("account is disabled")
)

// ValidationError marks a request rejected before touching storage.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// NewValidationError wraps msg as a ValidationError.
func NewValidationError(msg string) error {
	return &ValidationError{msg: msg}
}

// AsValidation converts a raw validation failure into a ValidationError,
// passing nil through.
func AsValidation(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{msg: err.Error()}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

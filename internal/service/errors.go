package service

import "errors"

// ErrNotFound is returned when a resource does not exist for the calling
// user. A resource owned by someone else produces the same error, so callers
// can never confirm the existence of another user's data.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned on login when the username is unknown or
// the password does not match. The two cases are deliberately conflated.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports a missing or unusable input field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

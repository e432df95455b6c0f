package users

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no user matches the requested id.
var ErrNotFound = errors.New("users: user does not exist")

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ValidationError reports a missing or empty required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "users: " + e.Field + " is required"
}

// ValidateUsername rejects usernames that are empty or only whitespace.
// The username itself is stored verbatim.
func ValidateUsername(username string) error {
	if len(strings.TrimSpace(username)) == 0 {
		return &ValidationError{Field: "username"}
	}
	return nil
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

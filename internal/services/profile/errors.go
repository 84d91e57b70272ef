package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates required identifying fields are missing or malformed
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates the targeted profile does not exist
	ErrNotFound = errors.New("profile not found")
	// ErrStoreUnavailable indicates the profile store could not be read or written
	ErrStoreUnavailable = errors.New("profile store unavailable")
)

// InputError describes a rejected request field
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// invalid returns an InputError wrapping ErrInvalidInput
func invalid(field, message string) error {
	return &InputError{Field: field, Message: message}
}

// unavailable wraps a persistence failure as ErrStoreUnavailable
func unavailable(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
}

// IsInvalidInput checks if an error is an input validation error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound checks if an error is a missing-profile error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStoreUnavailable checks if an error is a persistence failure
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// UserMessage returns the message safe to show to a client
func UserMessage(err error) string {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr.Message
	}
	switch {
	case IsNotFound(err):
		return "User not found"
	case IsStoreUnavailable(err):
		return "Profile store unavailable"
	default:
		return "Internal server error"
	}
}

package staking

import (
	"errors"
	"fmt"
)

// Validation and parsing errors
var (
	// ErrMalformedTimestamp is returned when a stake date cannot be parsed.
	// Countdown fields for that stake must render as an error, never as 0 days.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrInvalidAmount is returned for zero, negative or non-numeric amounts
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrInvalidAddress is returned when a destination is not 0x followed by 40 hex characters
	ErrInvalidAddress = errors.New("address must be 0x followed by 40 hexadecimal characters")

	// ErrExceedsAvailable is returned when a withdrawal is above the available balance
	ErrExceedsAvailable = errors.New("amount exceeds available balance")
)

// ValidationError reports which input failed a client-side guard.
// The request is never sent to the backend when one is returned.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err came from a client-side guard.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

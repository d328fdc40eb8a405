package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the auth/OTP flows. Services return these (possibly
// wrapped); the HTTP layer maps them to status codes and bilingual messages.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccountNotApproved = errors.New("account not approved")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicate          = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("unauthenticated")

	ErrOTPNotFound    = errors.New("otp not found")
	ErrOTPExpired     = errors.New("otp expired")
	ErrOTPMismatch    = errors.New("otp mismatch")
	ErrOTPNotVerified = errors.New("otp not verified")

	ErrWorkshopFull      = errors.New("workshop full")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError carries a field-level message for malformed input shape.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

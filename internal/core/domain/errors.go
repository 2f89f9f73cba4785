package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")

	ErrReservationNotFound = errors.New("reservation not found")
	ErrSlotFull            = errors.New("slot is fully booked")
	ErrSlotBusy            = errors.New("slot is being booked, try again")

	// ErrInvalidStatus is a validation error: errors.Is matches both.
	ErrInvalidStatus = fmt.Errorf("%w: invalid reservation status", ErrValidation)
)

// Invalid builds a validation error for a single offending input.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

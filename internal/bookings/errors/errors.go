package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrNotActive is returned when a status transition finds the booking
	// already expired or cancelled.
	ErrNotActive = errors.New("booking is not active")

	ErrLockHeld = errors.New("booking lock is held by another request")
)

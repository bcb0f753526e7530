package bookings

import "errors"

var (
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSlotTaken         = errors.New("slot already booked")
	ErrPastDate          = errors.New("date in the past")
	ErrPhoneMismatch     = errors.New("phone does not match booking")
)

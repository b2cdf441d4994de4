package domain

import "errors"

// Domain errors
var (
	// Booking errors
	ErrBookingNotFound      = errors.New("booking not found")
	ErrInvalidBookingID     = errors.New("invalid booking id")
	ErrInvalidBookingStatus = errors.New("invalid booking status")
	ErrAlreadyConfirmed     = errors.New("booking already confirmed")
	ErrBookingCancelled     = errors.New("booking is cancelled")
	ErrPaymentTimedOut      = errors.New("booking payment timed out")
	ErrMissingPaymentRef    = errors.New("payment reference is required")
	ErrPaymentFailed        = errors.New("payment was not completed")
	ErrAmountMismatch       = errors.New("booking amounts do not match the price table")

	// Validation errors, in the order the booking form checks them
	ErrNoTurfTypeSelected = errors.New("no turf type selected")
	ErrNoSlotsSelected    = errors.New("no slots selected")
	ErrMissingField       = errors.New("missing required field")

	// Catalog and grid errors
	ErrUnknownTurfType  = errors.New("unknown turf type")
	ErrInvalidSlot      = errors.New("slot is not on the daily grid")
	ErrInvalidSlotCount = errors.New("slot count must not be negative")
	ErrInvalidDate      = errors.New("invalid date")

	// Availability errors
	ErrSlotUnavailable = errors.New("one or more slots are already booked")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

package repository

import (
	"context"
	"time"
)

// HoldParams identifies the slots a pending booking wants to hold.
type HoldParams struct {
	BookingID  string
	Date       string
	TurfType   string
	Slots      []string
	TTLSeconds int
}

// HoldResult reports the outcome of a hold attempt.
type HoldResult struct {
	Success      bool
	ConflictSlot string
	ExpiresAt    time.Time
}

// SlotHoldRepository places short-lived holds on slots while a pending
// booking waits for payment. Holds expire on their own; releasing early
// is an optimization, not a correctness requirement.
type SlotHoldRepository interface {
	// HoldSlots atomically holds all slots or none of them.
	HoldSlots(ctx context.Context, params HoldParams) (*HoldResult, error)

	// ReleaseSlots drops the holds owned by the given booking.
	ReleaseSlots(ctx context.Context, params HoldParams) error

	// HeldSlots returns the currently held slots for a date and turf type.
	HeldSlots(ctx context.Context, date, turfType string) ([]string, error)
}

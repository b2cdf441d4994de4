package repository

import (
	"context"
	"time"

	"github.com/Aswindil12/algus-turf/internal/domain"
)

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Date     string
	TurfType string
	Status   string
}

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	// Create inserts a new booking, re-checking inside the transaction
	// that no surviving booking already occupies any of its slots.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by its ID
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// Update persists status, payment reference and timestamps
	Update(ctx context.Context, booking *domain.Booking) error

	// List retrieves bookings matching the filter, newest first
	List(ctx context.Context, filter ListFilter) ([]*domain.Booking, error)

	// ListByDate retrieves all bookings for a calendar date
	ListByDate(ctx context.Context, date string) ([]*domain.Booking, error)

	// ListRange retrieves non-cancelled bookings with from <= date <= to
	ListRange(ctx context.Context, from, to string) ([]*domain.Booking, error)

	// ListStalePending retrieves pending bookings created before the cutoff
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error)

	// CountUpcomingConfirmed counts confirmed bookings dated strictly after the given date
	CountUpcomingConfirmed(ctx context.Context, after string) (int, error)
}

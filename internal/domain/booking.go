package domain

import (
	"strings"
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "pending"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusCancelled       BookingStatus = "cancelled"
	BookingStatusPaymentTimedOut BookingStatus = "payment_timed_out"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusPaymentTimedOut:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// OccupiesSlots reports whether a booking in this status keeps its slots
// off the availability grid. Cancelled and timed-out bookings free their
// slots; pending bookings hold theirs until payment resolves.
func (s BookingStatus) OccupiesSlots() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// Booking represents a turf booking
type Booking struct {
	ID            string        `json:"id"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	CustomerPhone string        `json:"customer_phone"`
	TurfType      TurfType      `json:"turf_type"`
	Date          string        `json:"date"`
	Slots         []string      `json:"slots"`
	Total         int64         `json:"total"`
	Advance       int64         `json:"advance"`
	Remaining     int64         `json:"remaining"`
	Status        BookingStatus `json:"status"`
	PaymentRef    string        `json:"payment_ref,omitempty"`
	ConfirmedAt   *time.Time    `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Validate validates all booking fields
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrInvalidBookingID
	}
	if !b.TurfType.IsValid() {
		return ErrUnknownTurfType
	}
	if err := ValidateDate(b.Date); err != nil {
		return err
	}
	if len(b.Slots) == 0 {
		return ErrNoSlotsSelected
	}
	if err := ValidateSlots(b.Slots); err != nil {
		return err
	}
	if !b.Status.IsValid() {
		return ErrInvalidBookingStatus
	}
	return b.ValidateAmounts()
}

// ValidateAmounts checks the pricing invariants: total = price * slots,
// advance = advance rate * slots, remaining = total - advance.
func (b *Booking) ValidateAmounts() error {
	quote, err := QuoteFor(b.TurfType, len(b.Slots))
	if err != nil {
		return err
	}
	if b.Total != quote.Total || b.Advance != quote.Advance || b.Remaining != b.Total-b.Advance {
		return ErrAmountMismatch
	}
	return nil
}

// IsPending checks if the booking is awaiting payment
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsConfirmed checks if the booking is confirmed
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsCancelled checks if the booking is cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// Confirm marks the booking as confirmed with the gateway's payment
// reference. Only a pending booking can be confirmed.
func (b *Booking) Confirm(paymentRef string) error {
	switch b.Status {
	case BookingStatusPending:
	case BookingStatusConfirmed:
		return ErrAlreadyConfirmed
	case BookingStatusCancelled:
		return ErrBookingCancelled
	default:
		return ErrPaymentTimedOut
	}
	if strings.TrimSpace(paymentRef) == "" {
		return ErrMissingPaymentRef
	}
	now := time.Now()
	b.Status = BookingStatusConfirmed
	b.PaymentRef = paymentRef
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return nil
}

// Cancel marks the booking as cancelled. Cancelling an already cancelled
// booking is a no-op: the status stays cancelled both times.
func (b *Booking) Cancel() error {
	if b.Status == BookingStatusCancelled {
		return nil
	}
	now := time.Now()
	b.Status = BookingStatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// MarkPaymentTimedOut transitions a pending booking whose payment never
// resolved. Distinct from cancellation so the client can offer a retry.
func (b *Booking) MarkPaymentTimedOut() error {
	if b.Status != BookingStatusPending {
		return ErrInvalidBookingStatus
	}
	b.Status = BookingStatusPaymentTimedOut
	b.UpdatedAt = time.Now()
	return nil
}

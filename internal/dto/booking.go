package dto

import (
	"time"

	"github.com/Aswindil12/algus-turf/internal/domain"
)

// CreateBookingRequest represents the booking form submission.
// Fields are validated in the service so that failures report in a fixed
// order: turf type, then slots, then contact fields and date.
type CreateBookingRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	TurfType string   `json:"turf_type"`
	Date     string   `json:"date"`
	Slots    []string `json:"slots"`
}

// CreateBookingResponse is returned after a pending booking is created
// and submitted to the payment gateway.
type CreateBookingResponse struct {
	BookingID     string    `json:"booking_id"`
	Status        string    `json:"status"`
	Total         int64     `json:"total"`
	Advance       int64     `json:"advance"`
	Remaining     int64     `json:"remaining"`
	PaymentIntent string    `json:"payment_intent_id,omitempty"`
	ClientSecret  string    `json:"client_secret,omitempty"`
	HoldExpiresAt time.Time `json:"hold_expires_at"`
}

// ConfirmBookingRequest carries the gateway's success callback payload
type ConfirmBookingRequest struct {
	PaymentRef string `json:"payment_ref" binding:"required"`
}

// CancelBookingResponse is returned after an admin cancellation
type CancelBookingResponse struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID            string     `json:"id"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	CustomerPhone string     `json:"customer_phone"`
	TurfType      string     `json:"turf_type"`
	TurfName      string     `json:"turf_name"`
	Date          string     `json:"date"`
	Slots         []string   `json:"slots"`
	Total         int64      `json:"total"`
	Advance       int64      `json:"advance"`
	Remaining     int64      `json:"remaining"`
	Status        string     `json:"status"`
	PaymentRef    string     `json:"payment_ref,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// FromDomain converts a domain Booking to a BookingResponse
func FromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:            b.ID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		TurfType:      b.TurfType.String(),
		TurfName:      b.TurfType.DisplayName(),
		Date:          b.Date,
		Slots:         b.Slots,
		Total:         b.Total,
		Advance:       b.Advance,
		Remaining:     b.Remaining,
		Status:        b.Status.String(),
		PaymentRef:    b.PaymentRef,
		ConfirmedAt:   b.ConfirmedAt,
		CreatedAt:     b.CreatedAt,
	}
}

// SlotStatus is one cell of the availability grid
type SlotStatus struct {
	Slot   string `json:"slot"`
	Booked bool   `json:"booked"`
}

// AvailabilityResponse is the resolved grid for a date
type AvailabilityResponse struct {
	Date           string       `json:"date"`
	TurfType       string       `json:"turf_type,omitempty"`
	Slots          []SlotStatus `json:"slots"`
	AvailableCount int          `json:"available_count"`
	TotalSlots     int          `json:"total_slots"`
}

// QuoteResponse carries the pricing calculator output
type QuoteResponse struct {
	TurfType  string `json:"turf_type"`
	SlotCount int    `json:"slot_count"`
	Total     int64  `json:"total"`
	Advance   int64  `json:"advance"`
	Remaining int64  `json:"remaining"`
}

// ListBookingsFilter holds the optional admin list filters
type ListBookingsFilter struct {
	Date     string `form:"date"`
	TurfType string `form:"turf_type"`
	Status   string `form:"status"`
}

package domain

import "time"

// BookingEventType identifies a booking lifecycle event on the stream
type BookingEventType string

const (
	BookingEventCreated        BookingEventType = "booking.created"
	BookingEventConfirmed      BookingEventType = "booking.confirmed"
	BookingEventCancelled      BookingEventType = "booking.cancelled"
	BookingEventPaymentTimeout BookingEventType = "booking.payment_timed_out"
)

// BookingEvent is the payload published for each lifecycle transition.
// Consumers (confirmation email/SMS pipeline) key on BookingID.
type BookingEvent struct {
	EventID    string           `json:"event_id"`
	EventType  BookingEventType `json:"event_type"`
	BookingID  string           `json:"booking_id"`
	TurfType   TurfType         `json:"turf_type"`
	Date       string           `json:"date"`
	Slots      []string         `json:"slots"`
	Advance    int64            `json:"advance"`
	Remaining  int64            `json:"remaining"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Key returns the partition key for the event
func (e *BookingEvent) Key() string {
	return e.BookingID
}

// NewBookingEvent builds an event from a booking snapshot
func NewBookingEvent(eventType BookingEventType, booking *Booking, eventID string) *BookingEvent {
	return &BookingEvent{
		EventID:    eventID,
		EventType:  eventType,
		BookingID:  booking.ID,
		TurfType:   booking.TurfType,
		Date:       booking.Date,
		Slots:      booking.Slots,
		Advance:    booking.Advance,
		Remaining:  booking.Remaining,
		Email:      booking.CustomerEmail,
		Phone:      booking.CustomerPhone,
		OccurredAt: time.Now(),
	}
}

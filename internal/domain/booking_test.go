package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestBooking() *Booking {
	now := time.Now()
	return &Booking{
		ID:            "BK-test-1",
		CustomerName:  "Arun Kumar",
		CustomerEmail: "arun@example.com",
		CustomerPhone: "9876543210",
		TurfType:      TurfFootballHalf,
		Date:          "2025-06-01",
		Slots:         []string{"18:00", "19:00", "20:00"},
		Total:         1800,
		Advance:       600,
		Remaining:     1200,
		Status:        BookingStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestBookingValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Booking)
		wantErr error
	}{
		{name: "valid booking", mutate: func(b *Booking) {}},
		{name: "missing id", mutate: func(b *Booking) { b.ID = " " }, wantErr: ErrInvalidBookingID},
		{name: "bad turf type", mutate: func(b *Booking) { b.TurfType = "squash" }, wantErr: ErrUnknownTurfType},
		{name: "bad date", mutate: func(b *Booking) { b.Date = "01/06/2025" }, wantErr: ErrInvalidDate},
		{name: "no slots", mutate: func(b *Booking) { b.Slots = nil }, wantErr: ErrNoSlotsSelected},
		{name: "off-grid slot", mutate: func(b *Booking) { b.Slots = []string{"03:00"} }, wantErr: ErrInvalidSlot},
		{name: "bad status", mutate: func(b *Booking) { b.Status = "draft" }, wantErr: ErrInvalidBookingStatus},
		{name: "total mismatch", mutate: func(b *Booking) { b.Total = 9999 }, wantErr: ErrAmountMismatch},
		{name: "remaining mismatch", mutate: func(b *Booking) { b.Remaining = 1 }, wantErr: ErrAmountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBooking()
			tt.mutate(b)
			err := b.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookingConfirm(t *testing.T) {
	t.Run("pending booking confirms with payment ref", func(t *testing.T) {
		b := newTestBooking()
		if err := b.Confirm("pay_abc123"); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if b.Status != BookingStatusConfirmed {
			t.Errorf("status = %s, want confirmed", b.Status)
		}
		if b.PaymentRef != "pay_abc123" {
			t.Errorf("payment ref = %q, want pay_abc123", b.PaymentRef)
		}
		if b.ConfirmedAt == nil {
			t.Error("ConfirmedAt not set")
		}
	})

	t.Run("empty payment ref rejected", func(t *testing.T) {
		b := newTestBooking()
		if err := b.Confirm("  "); !errors.Is(err, ErrMissingPaymentRef) {
			t.Errorf("Confirm() error = %v, want ErrMissingPaymentRef", err)
		}
	})

	t.Run("confirming twice fails", func(t *testing.T) {
		b := newTestBooking()
		if err := b.Confirm("pay_abc123"); err != nil {
			t.Fatalf("first Confirm() error = %v", err)
		}
		if err := b.Confirm("pay_other"); !errors.Is(err, ErrAlreadyConfirmed) {
			t.Errorf("second Confirm() error = %v, want ErrAlreadyConfirmed", err)
		}
		if b.PaymentRef != "pay_abc123" {
			t.Errorf("payment ref overwritten to %q", b.PaymentRef)
		}
	})

	t.Run("cancelled booking cannot confirm", func(t *testing.T) {
		b := newTestBooking()
		b.Status = BookingStatusCancelled
		if err := b.Confirm("pay_abc123"); !errors.Is(err, ErrBookingCancelled) {
			t.Errorf("Confirm() error = %v, want ErrBookingCancelled", err)
		}
	})
}

func TestBookingCancel(t *testing.T) {
	t.Run("cancel is idempotent", func(t *testing.T) {
		b := newTestBooking()
		if err := b.Cancel(); err != nil {
			t.Fatalf("first Cancel() error = %v", err)
		}
		if b.Status != BookingStatusCancelled {
			t.Fatalf("status = %s, want cancelled", b.Status)
		}
		if err := b.Cancel(); err != nil {
			t.Fatalf("second Cancel() error = %v", err)
		}
		if b.Status != BookingStatusCancelled {
			t.Errorf("status after double cancel = %s, want cancelled", b.Status)
		}
	})

	t.Run("confirmed booking can still be cancelled by admin", func(t *testing.T) {
		b := newTestBooking()
		if err := b.Confirm("pay_abc123"); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if err := b.Cancel(); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if b.Status != BookingStatusCancelled {
			t.Errorf("status = %s, want cancelled", b.Status)
		}
	})
}

func TestMarkPaymentTimedOut(t *testing.T) {
	b := newTestBooking()
	if err := b.MarkPaymentTimedOut(); err != nil {
		t.Fatalf("MarkPaymentTimedOut() error = %v", err)
	}
	if b.Status != BookingStatusPaymentTimedOut {
		t.Fatalf("status = %s, want payment_timed_out", b.Status)
	}
	if b.Status.OccupiesSlots() {
		t.Error("timed-out booking should not occupy slots")
	}

	// Only pending bookings can time out
	if err := b.MarkPaymentTimedOut(); !errors.Is(err, ErrInvalidBookingStatus) {
		t.Errorf("second MarkPaymentTimedOut() error = %v, want ErrInvalidBookingStatus", err)
	}
}

func TestStatusOccupiesSlots(t *testing.T) {
	occupied := map[BookingStatus]bool{
		BookingStatusPending:         true,
		BookingStatusConfirmed:       true,
		BookingStatusCancelled:       false,
		BookingStatusPaymentTimedOut: false,
	}
	for status, want := range occupied {
		if got := status.OccupiesSlots(); got != want {
			t.Errorf("%s.OccupiesSlots() = %v, want %v", status, got, want)
		}
	}
}

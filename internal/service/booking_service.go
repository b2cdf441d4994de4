package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aswindil12/algus-turf/internal/domain"
	"github.com/Aswindil12/algus-turf/internal/dto"
	"github.com/Aswindil12/algus-turf/internal/gateway"
	"github.com/Aswindil12/algus-turf/internal/metrics"
	"github.com/Aswindil12/algus-turf/internal/repository"
	"github.com/Aswindil12/algus-turf/pkg/logger"
	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

// BookingService defines the interface for booking business logic
type BookingService interface {
	// CreateBooking validates the booking form, holds the slots and opens
	// a payment intent for the advance.
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)

	// ConfirmBooking settles a pending booking after payment
	ConfirmBooking(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error)

	// CancelBooking cancels a booking, idempotently
	CancelBooking(ctx context.Context, bookingID string) (*dto.CancelBookingResponse, error)

	// GetBooking retrieves a booking by ID
	GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error)

	// ListBookings retrieves bookings matching the admin filters
	ListBookings(ctx context.Context, filter *dto.ListBookingsFilter) ([]*dto.BookingResponse, error)

	// Quote prices a prospective slot selection without booking anything
	Quote(ctx context.Context, turfType string, slotCount int) (*dto.QuoteResponse, error)

	// ExpirePayments times out pending bookings older than the payment
	// window and frees their slots. Returns the number timed out.
	ExpirePayments(ctx context.Context, limit int) (int, error)
}

// bookingService implements BookingService
type bookingService struct {
	bookingRepo    repository.BookingRepository
	slotHoldRepo   repository.SlotHoldRepository
	paymentGateway gateway.PaymentGateway
	eventPublisher EventPublisher
	paymentTimeout time.Duration
	currency       string
}

// BookingServiceConfig contains configuration for booking service
type BookingServiceConfig struct {
	PaymentTimeout time.Duration
	Currency       string
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	slotHoldRepo repository.SlotHoldRepository,
	paymentGateway gateway.PaymentGateway,
	eventPublisher EventPublisher,
	cfg *BookingServiceConfig,
) BookingService {
	timeout := 10 * time.Minute
	currency := "inr"
	if cfg != nil {
		if cfg.PaymentTimeout > 0 {
			timeout = cfg.PaymentTimeout
		}
		if cfg.Currency != "" {
			currency = cfg.Currency
		}
	}
	// Use NoOpEventPublisher if none provided
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		slotHoldRepo:   slotHoldRepo,
		paymentGateway: paymentGateway,
		eventPublisher: eventPublisher,
		paymentTimeout: timeout,
		currency:       currency,
	}
}

// CreateBooking validates the form in a fixed order, holds the requested
// slots, opens a payment intent for the advance and persists the pending
// booking.
func (s *bookingService) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	// Validation order matters: turf type first, then slots, then the
	// contact fields and date.
	if req == nil || req.TurfType == "" {
		span.SetStatus(codes.Error, "no turf type selected")
		return nil, domain.ErrNoTurfTypeSelected
	}
	turfType := domain.TurfType(req.TurfType)
	if !turfType.IsValid() {
		span.SetStatus(codes.Error, "unknown turf type")
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTurfType, req.TurfType)
	}
	if len(req.Slots) == 0 {
		span.SetStatus(codes.Error, "no slots selected")
		return nil, domain.ErrNoSlotsSelected
	}
	if err := domain.ValidateSlots(req.Slots); err != nil {
		span.SetStatus(codes.Error, "invalid slots")
		return nil, err
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"phone", req.Phone},
	} {
		if strings.TrimSpace(field.value) == "" {
			span.SetStatus(codes.Error, "missing "+field.name)
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingField, field.name)
		}
	}
	if err := domain.ValidateDate(req.Date); err != nil {
		span.SetStatus(codes.Error, "invalid date")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("turf_type", req.TurfType),
		attribute.String("date", req.Date),
		attribute.Int("slot_count", len(req.Slots)),
	)

	quote, err := domain.QuoteFor(turfType, len(req.Slots))
	if err != nil {
		return nil, err
	}

	bookingID := uuid.New().String()

	// Hold the slots in Redis atomically. The TTL matches the payment
	// window, so abandoned checkouts free their slots on their own.
	holdParams := repository.HoldParams{
		BookingID:  bookingID,
		Date:       req.Date,
		TurfType:   req.TurfType,
		Slots:      req.Slots,
		TTLSeconds: int(s.paymentTimeout.Seconds()),
	}
	hold, err := s.slotHoldRepo.HoldSlots(ctx, holdParams)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !hold.Success {
		metrics.RecordFailure(ctx, req.TurfType, "slot_unavailable")
		span.SetStatus(codes.Error, "slot unavailable")
		return nil, fmt.Errorf("%w: %s", domain.ErrSlotUnavailable, hold.ConflictSlot)
	}

	// Open the payment intent before persisting so a gateway outage
	// leaves nothing behind except an expiring hold.
	intent, err := s.paymentGateway.CreatePaymentIntent(ctx, &gateway.PaymentIntentRequest{
		BookingID:   bookingID,
		Amount:      quote.Advance,
		Currency:    s.currency,
		Description: fmt.Sprintf("Advance for %s on %s", turfType.DisplayName(), req.Date),
		Metadata: map[string]string{
			"turf_type": req.TurfType,
			"date":      req.Date,
		},
	})
	if err != nil {
		s.releaseHolds(ctx, holdParams)
		metrics.RecordFailure(ctx, req.TurfType, "payment_intent")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to open payment intent: %w", err)
	}

	now := time.Now()
	booking := &domain.Booking{
		ID:            bookingID,
		CustomerName:  strings.TrimSpace(req.Name),
		CustomerEmail: strings.TrimSpace(req.Email),
		CustomerPhone: strings.TrimSpace(req.Phone),
		TurfType:      turfType,
		Date:          req.Date,
		Slots:         req.Slots,
		Total:         quote.Total,
		Advance:       quote.Advance,
		Remaining:     quote.Remaining,
		Status:        domain.BookingStatusPending,
		PaymentRef:    intent.PaymentIntentID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		s.releaseHolds(ctx, holdParams)
		if errors.Is(err, domain.ErrSlotUnavailable) {
			metrics.RecordFailure(ctx, req.TurfType, "slot_unavailable")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	_ = s.eventPublisher.PublishBookingCreated(ctx, booking)

	metrics.RecordBookingCreated(ctx, req.TurfType, len(req.Slots))

	span.AddEvent("booking_created", trace.WithAttributes(
		attribute.String("booking_id", bookingID),
		attribute.Int64("total", quote.Total),
		attribute.Int64("advance", quote.Advance),
	))

	span.SetAttributes(attribute.String("booking_id", bookingID))
	span.SetStatus(codes.Ok, "")
	return &dto.CreateBookingResponse{
		BookingID:     bookingID,
		Status:        booking.Status.String(),
		Total:         quote.Total,
		Advance:       quote.Advance,
		Remaining:     quote.Remaining,
		PaymentIntent: intent.PaymentIntentID,
		ClientSecret:  intent.ClientSecret,
		HoldExpiresAt: hold.ExpiresAt,
	}, nil
}

// ConfirmBooking settles a pending booking after the client completed
// payment. The supplied reference is verified against the gateway before
// the booking transitions.
func (s *bookingService) ConfirmBooking(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.confirm")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if bookingID == "" {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, domain.ErrInvalidBookingID
	}
	if req == nil || strings.TrimSpace(req.PaymentRef) == "" {
		span.SetStatus(codes.Error, "missing payment_ref")
		return nil, domain.ErrMissingPaymentRef
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The reference must be the intent opened for this booking, not just any
	// settled intent the caller knows about.
	if req.PaymentRef != booking.PaymentRef {
		span.SetStatus(codes.Error, "payment_ref mismatch")
		return nil, fmt.Errorf("%w: payment reference does not belong to this booking", domain.ErrPaymentFailed)
	}

	intent, err := s.paymentGateway.ConfirmPaymentIntent(ctx, req.PaymentRef)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if intent.Status != "succeeded" {
		span.SetAttributes(attribute.String("intent_status", intent.Status))
		span.SetStatus(codes.Error, "payment not settled")
		return nil, fmt.Errorf("%w: intent status %s", domain.ErrPaymentFailed, intent.Status)
	}
	if intent.Amount != booking.Advance {
		span.SetAttributes(attribute.Int64("intent_amount", intent.Amount))
		span.SetStatus(codes.Error, "intent amount mismatch")
		return nil, fmt.Errorf("%w: intent amount %d does not cover advance %d", domain.ErrPaymentFailed, intent.Amount, booking.Advance)
	}

	if err := booking.Confirm(req.PaymentRef); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The confirmed row now occupies the slots durably; the Redis holds
	// are no longer needed.
	s.releaseHolds(ctx, repository.HoldParams{
		BookingID: booking.ID,
		Date:      booking.Date,
		TurfType:  booking.TurfType.String(),
		Slots:     booking.Slots,
	})

	_ = s.eventPublisher.PublishBookingConfirmed(ctx, booking)

	durationSeconds := time.Since(booking.CreatedAt).Seconds()
	metrics.RecordConfirmation(ctx, booking.TurfType.String(), durationSeconds)

	span.AddEvent("booking_confirmed", trace.WithAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("payment_ref", req.PaymentRef),
		attribute.Float64("duration_seconds", durationSeconds),
	))

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// CancelBooking cancels a booking. Cancelling twice is a no-op: the
// second call reports cancelled again without touching anything.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (*dto.CancelBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if bookingID == "" {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, domain.ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if booking.IsCancelled() {
		span.SetStatus(codes.Ok, "")
		return &dto.CancelBookingResponse{
			BookingID: bookingID,
			Status:    booking.Status.String(),
		}, nil
	}

	wasPending := booking.IsPending()
	wasConfirmed := booking.IsConfirmed()

	if err := booking.Cancel(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if wasPending {
		s.releaseHolds(ctx, repository.HoldParams{
			BookingID: booking.ID,
			Date:      booking.Date,
			TurfType:  booking.TurfType.String(),
			Slots:     booking.Slots,
		})
	}

	// Refund the advance for confirmed bookings, best effort. A failed
	// refund is an ops follow-up, not a failed cancellation.
	if wasConfirmed && booking.PaymentRef != "" {
		if err := s.paymentGateway.Refund(ctx, booking.PaymentRef, booking.Advance); err != nil {
			logger.Get().Error("Failed to refund advance", "booking_id", booking.ID, "error", err)
		}
	}

	_ = s.eventPublisher.PublishBookingCancelled(ctx, booking)

	metrics.RecordCancellation(ctx, booking.TurfType.String(), wasPending)

	span.AddEvent("booking_cancelled", trace.WithAttributes(
		attribute.String("booking_id", bookingID),
	))

	span.SetStatus(codes.Ok, "")
	return &dto.CancelBookingResponse{
		BookingID: bookingID,
		Status:    booking.Status.String(),
	}, nil
}

// GetBooking retrieves a booking by ID
func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	if bookingID == "" {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, domain.ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(booking), nil
}

// ListBookings retrieves bookings matching the admin filters
func (s *bookingService) ListBookings(ctx context.Context, filter *dto.ListBookingsFilter) ([]*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list")
	defer span.End()

	repoFilter := repository.ListFilter{}
	if filter != nil {
		if filter.Date != "" {
			if err := domain.ValidateDate(filter.Date); err != nil {
				span.SetStatus(codes.Error, "invalid date")
				return nil, err
			}
			repoFilter.Date = filter.Date
		}
		if filter.TurfType != "" {
			if !domain.TurfType(filter.TurfType).IsValid() {
				span.SetStatus(codes.Error, "unknown turf type")
				return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTurfType, filter.TurfType)
			}
			repoFilter.TurfType = filter.TurfType
		}
		if filter.Status != "" {
			if !domain.BookingStatus(filter.Status).IsValid() {
				span.SetStatus(codes.Error, "invalid status")
				return nil, domain.ErrInvalidBookingStatus
			}
			repoFilter.Status = filter.Status
		}
	}

	bookings, err := s.bookingRepo.List(ctx, repoFilter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, dto.FromDomain(b))
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// Quote prices a prospective slot selection without booking anything
func (s *bookingService) Quote(ctx context.Context, turfType string, slotCount int) (*dto.QuoteResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.quote")
	defer span.End()

	span.SetAttributes(
		attribute.String("turf_type", turfType),
		attribute.Int("slot_count", slotCount),
	)

	if turfType == "" {
		span.SetStatus(codes.Error, "no turf type selected")
		return nil, domain.ErrNoTurfTypeSelected
	}

	quote, err := domain.QuoteFor(domain.TurfType(turfType), slotCount)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.QuoteResponse{
		TurfType:  turfType,
		SlotCount: slotCount,
		Total:     quote.Total,
		Advance:   quote.Advance,
		Remaining: quote.Remaining,
	}, nil
}

// ExpirePayments times out pending bookings whose payment window has
// elapsed. Called periodically by the payment timeout worker.
func (s *bookingService) ExpirePayments(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.expire_payments")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	cutoff := time.Now().Add(-s.paymentTimeout)
	stale, err := s.bookingRepo.ListStalePending(ctx, cutoff, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	expired := 0
	for _, booking := range stale {
		if err := booking.MarkPaymentTimedOut(); err != nil {
			continue
		}
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			logger.Get().Error("Failed to time out booking", "booking_id", booking.ID, "error", err)
			continue
		}

		// Holds usually expired already; release covers clock drift.
		s.releaseHolds(ctx, repository.HoldParams{
			BookingID: booking.ID,
			Date:      booking.Date,
			TurfType:  booking.TurfType.String(),
			Slots:     booking.Slots,
		})

		_ = s.eventPublisher.PublishPaymentTimedOut(ctx, booking)
		expired++
	}

	if expired > 0 {
		metrics.RecordPaymentTimeout(ctx, int64(expired))
	}

	span.SetAttributes(attribute.Int("expired", expired))
	span.SetStatus(codes.Ok, "")
	return expired, nil
}

func (s *bookingService) releaseHolds(ctx context.Context, params repository.HoldParams) {
	if err := s.slotHoldRepo.ReleaseSlots(ctx, params); err != nil {
		logger.Get().Warn("Failed to release slot holds", "booking_id", params.BookingID, "error", err)
	}
}

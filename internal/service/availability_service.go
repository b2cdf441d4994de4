package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aswindil12/algus-turf/internal/domain"
	"github.com/Aswindil12/algus-turf/internal/dto"
	"github.com/Aswindil12/algus-turf/internal/repository"
	"github.com/Aswindil12/algus-turf/pkg/logger"
	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

// AvailabilityService resolves the daily slot grid against bookings and
// live slot holds.
type AvailabilityService interface {
	// GetAvailability returns the slot grid for a date, marking slots
	// occupied by pending or confirmed bookings. turfType narrows the
	// check to one turf and may be empty.
	GetAvailability(ctx context.Context, date, turfType string) (*dto.AvailabilityResponse, error)
}

// availabilityService implements AvailabilityService
type availabilityService struct {
	bookingRepo  repository.BookingRepository
	slotHoldRepo repository.SlotHoldRepository

	// sharedField makes every booking block the whole field regardless
	// of turf type.
	sharedField bool
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	bookingRepo repository.BookingRepository,
	slotHoldRepo repository.SlotHoldRepository,
	sharedField bool,
) AvailabilityService {
	return &availabilityService{
		bookingRepo:  bookingRepo,
		slotHoldRepo: slotHoldRepo,
		sharedField:  sharedField,
	}
}

// GetAvailability resolves the grid for a date
func (s *availabilityService) GetAvailability(ctx context.Context, date, turfType string) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.get")
	defer span.End()

	span.SetAttributes(
		attribute.String("date", date),
		attribute.String("turf_type", turfType),
	)

	if err := domain.ValidateDate(date); err != nil {
		span.SetStatus(codes.Error, "invalid date")
		return nil, err
	}
	if turfType != "" && !domain.TurfType(turfType).IsValid() {
		span.SetStatus(codes.Error, "unknown turf type")
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTurfType, turfType)
	}

	bookings, err := s.bookingRepo.ListByDate(ctx, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booked := make(map[string]bool, domain.SlotCount)
	for _, booking := range bookings {
		if !booking.Status.OccupiesSlots() {
			continue
		}
		if !s.blocks(booking.TurfType.String(), turfType) {
			continue
		}
		for _, slot := range booking.Slots {
			// Slots that fell off the grid (bad writes, historic data)
			// are skipped rather than corrupting the whole grid.
			if !domain.IsValidSlot(slot) {
				logger.Get().Warn("Skipping malformed slot on booking",
					"booking_id", booking.ID, "slot", slot)
				continue
			}
			booked[slot] = true
		}
	}

	// Live holds cover the window between a hold being placed and its
	// pending row landing in Postgres.
	if s.slotHoldRepo != nil {
		held, err := s.slotHoldRepo.HeldSlots(ctx, date, turfType)
		if err != nil {
			// Redis being down degrades to Postgres-only availability
			logger.Get().Warn("Failed to read slot holds", "date", date, "error", err)
		} else {
			for _, slot := range held {
				booked[slot] = true
			}
		}
	}

	grid := domain.SlotGrid()
	slots := make([]dto.SlotStatus, 0, len(grid))
	available := 0
	for _, slot := range grid {
		isBooked := booked[slot]
		if !isBooked {
			available++
		}
		slots = append(slots, dto.SlotStatus{Slot: slot, Booked: isBooked})
	}

	span.SetAttributes(attribute.Int("available", available))
	span.SetStatus(codes.Ok, "")
	return &dto.AvailabilityResponse{
		Date:           date,
		TurfType:       turfType,
		Slots:          slots,
		AvailableCount: available,
		TotalSlots:     domain.SlotCount,
	}, nil
}

// blocks reports whether a booking for bookingTurf occupies slots from
// the perspective of a query filtered to queryTurf.
func (s *availabilityService) blocks(bookingTurf, queryTurf string) bool {
	if s.sharedField || queryTurf == "" {
		return true
	}
	return bookingTurf == queryTurf
}

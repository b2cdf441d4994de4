package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aswindil12/algus-turf/internal/domain"
	"github.com/Aswindil12/algus-turf/internal/dto"
	"github.com/Aswindil12/algus-turf/internal/service"
	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

// BookingHandler handles booking HTTP requests. Slot conflicts resolve
// through the Redis hold plus the transactional re-check in Postgres, so
// two customers racing for the same slot get one booking and one 409.
type BookingHandler struct {
	bookingService      service.BookingService
	availabilityService service.AvailabilityService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService, availabilityService service.AvailabilityService) *BookingHandler {
	return &BookingHandler{
		bookingService:      bookingService,
		availabilityService: availabilityService,
	}
}

// CreateBooking handles POST /api/bookings
// Validates the form, holds the slots and opens a payment intent for the
// advance. The booking stays pending until the payment callback confirms it.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(
		attribute.String("turf_type", req.TurfType),
		attribute.String("date", req.Date),
		attribute.Int("slot_count", len(req.Slots)),
	)

	result, err := h.bookingService.CreateBooking(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", result.BookingID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// ConfirmBooking handles POST /api/bookings/:id/confirm
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.confirm")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	var req dto.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "missing payment_ref")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "payment_ref is required",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	result, err := h.bookingService.ConfirmBooking(ctx, bookingID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// CancelBooking handles POST /api/bookings/:id/cancel
// Cancelling twice returns 200 both times with status cancelled.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.CancelBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetBooking handles GET /api/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.GetBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetAvailability handles GET /api/availability?date=YYYY-MM-DD&turf_type=
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	date := c.Query("date")
	turfType := c.Query("turf_type")
	if date == "" {
		span.SetStatus(codes.Error, "date required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "date query parameter is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(
		attribute.String("date", date),
		attribute.String("turf_type", turfType),
	)

	result, err := h.availabilityService.GetAvailability(ctx, date, turfType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetQuote handles GET /api/pricing/quote?turf_type=&slots=N
func (h *BookingHandler) GetQuote(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.quote")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	turfType := c.Query("turf_type")
	slotCount, err := strconv.Atoi(c.DefaultQuery("slots", "0"))
	if err != nil || slotCount < 0 {
		span.SetStatus(codes.Error, "invalid slots")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "slots must be a non-negative integer",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(
		attribute.String("turf_type", turfType),
		attribute.Int("slot_count", slotCount),
	)

	result, err := h.bookingService.Quote(ctx, turfType, slotCount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// handleError maps domain errors to HTTP status codes
func (h *BookingHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, domain.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "SLOT_UNAVAILABLE",
			Message: "One or more selected slots were just booked. Refresh availability and pick again.",
		})
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "ALREADY_CONFIRMED",
		})
	case errors.Is(err, domain.ErrBookingCancelled):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "BOOKING_CANCELLED",
		})
	case errors.Is(err, domain.ErrPaymentTimedOut):
		c.JSON(http.StatusGone, dto.ErrorResponse{
			Error:   err.Error(),
			Code:    "PAYMENT_TIMED_OUT",
			Message: "The payment window elapsed. Start a new booking to retry.",
		})
	case errors.Is(err, domain.ErrPaymentFailed):
		c.JSON(http.StatusPaymentRequired, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "PAYMENT_FAILED",
		})
	case errors.Is(err, domain.ErrNoTurfTypeSelected),
		errors.Is(err, domain.ErrNoSlotsSelected),
		errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrMissingPaymentRef),
		errors.Is(err, domain.ErrUnknownTurfType),
		errors.Is(err, domain.ErrInvalidSlot),
		errors.Is(err, domain.ErrInvalidSlotCount),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidBookingID),
		errors.Is(err, domain.ErrInvalidBookingStatus):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

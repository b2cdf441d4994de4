package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aswindil12/algus-turf/internal/domain"
	"github.com/Aswindil12/algus-turf/internal/dto"
	"github.com/Aswindil12/algus-turf/internal/service"
	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

// AdminHandler handles admin HTTP requests. All routes sit behind the
// admin role middleware.
type AdminHandler struct {
	adminService   service.AdminService
	bookingService service.BookingService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService service.AdminService, bookingService service.BookingService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		bookingService: bookingService,
	}
}

// GetDashboard handles GET /api/admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.dashboard")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.adminService.GetDashboard(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetReport handles GET /api/admin/reports?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *AdminHandler) GetReport(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.report")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		span.SetStatus(codes.Error, "range required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "from and to query parameters are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(attribute.String("from", from), attribute.String("to", to))

	result, err := h.adminService.GetReport(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// ListBookings handles GET /api/admin/bookings with optional filters
func (h *AdminHandler) ListBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list_bookings")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var filter dto.ListBookingsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		span.SetStatus(codes.Error, "invalid filters")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid filters",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	result, err := h.bookingService.ListBookings(ctx, &filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, gin.H{"bookings": result, "count": len(result)})
}

// ExportBookings handles GET /api/admin/bookings/export?from=&to=
// Streams CSV with a content-disposition filename carrying the range.
func (h *AdminHandler) ExportBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.export")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		span.SetStatus(codes.Error, "range required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "from and to query parameters are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(attribute.String("from", from), attribute.String("to", to))

	filename := fmt.Sprintf("bookings_%s_%s.csv", from, to)
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.adminService.ExportBookingsCSV(ctx, from, to, c.Writer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// Headers may already be out; only send a JSON error if not
		if !c.Writer.Written() {
			h.handleError(c, err)
		}
		return
	}

	span.SetStatus(codes.Ok, "")
}

// handleError maps admin errors to HTTP status codes
func (h *AdminHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrUnknownTurfType),
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

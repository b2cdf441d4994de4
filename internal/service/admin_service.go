package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aswindil12/algus-turf/internal/domain"
	"github.com/Aswindil12/algus-turf/internal/dto"
	"github.com/Aswindil12/algus-turf/internal/repository"
	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

// AdminService aggregates booking data for the admin dashboard, range
// reports and CSV export.
type AdminService interface {
	// GetDashboard returns the stat cards for today
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)

	// GetReport returns per-date booking counts and revenue for an
	// inclusive date range. Cancelled bookings are excluded.
	GetReport(ctx context.Context, from, to string) (*dto.ReportResponse, error)

	// ExportBookingsCSV streams the bookings of a date range as CSV
	ExportBookingsCSV(ctx context.Context, from, to string, w io.Writer) error
}

// adminService implements AdminService
type adminService struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(bookingRepo repository.BookingRepository, userRepo repository.UserRepository) AdminService {
	return &adminService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// GetDashboard returns the stat cards for today. Revenue is the advance
// collected across today's non-cancelled bookings.
func (s *adminService) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admin.dashboard")
	defer span.End()

	today := s.now().Format("2006-01-02")
	span.SetAttributes(attribute.String("date", today))

	bookings, err := s.bookingRepo.ListByDate(ctx, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	todayCount := 0
	var todayRevenue int64
	for _, booking := range bookings {
		if booking.IsCancelled() {
			continue
		}
		todayCount++
		todayRevenue += booking.Advance
	}

	upcoming, err := s.bookingRepo.CountUpcomingConfirmed(ctx, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.DashboardResponse{
		TodayBookings:    todayCount,
		TodayRevenue:     todayRevenue,
		UpcomingBookings: upcoming,
		TotalUsers:       totalUsers,
	}, nil
}

// GetReport returns per-date booking counts and revenue for an inclusive
// date range
func (s *adminService) GetReport(ctx context.Context, from, to string) (*dto.ReportResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admin.report")
	defer span.End()

	span.SetAttributes(attribute.String("from", from), attribute.String("to", to))

	if err := validateRange(from, to); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	bookings, err := s.bookingRepo.ListRange(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	byDate := make(map[string]*dto.ReportRow)
	var order []string
	for _, booking := range bookings {
		row, ok := byDate[booking.Date]
		if !ok {
			row = &dto.ReportRow{Date: booking.Date}
			byDate[booking.Date] = row
			order = append(order, booking.Date)
		}
		switch booking.TurfType {
		case domain.TurfFootballFull:
			row.FootballFull++
		case domain.TurfFootballHalf:
			row.FootballHalf++
		case domain.TurfCricket:
			row.Cricket++
		}
		row.Bookings++
		row.Revenue += booking.Total
	}

	resp := &dto.ReportResponse{From: from, To: to}
	for _, date := range order {
		row := byDate[date]
		resp.Rows = append(resp.Rows, *row)
		resp.TotalBookings += row.Bookings
		resp.TotalRevenue += row.Revenue
	}

	span.SetAttributes(attribute.Int("rows", len(resp.Rows)))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// csvHeader is the export column order
var csvHeader = []string{
	"booking_id", "date", "turf_type", "slots",
	"customer_name", "customer_email", "customer_phone",
	"status", "total", "advance", "remaining",
	"payment_ref", "created_at",
}

// ExportBookingsCSV streams the bookings of a date range as CSV. Fields
// containing commas, quotes or newlines are quoted by the encoder.
func (s *adminService) ExportBookingsCSV(ctx context.Context, from, to string, w io.Writer) error {
	ctx, span := telemetry.StartSpan(ctx, "service.admin.export_csv")
	defer span.End()

	span.SetAttributes(attribute.String("from", from), attribute.String("to", to))

	if err := validateRange(from, to); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	bookings, err := s.bookingRepo.ListRange(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, booking := range bookings {
		record := []string{
			booking.ID,
			booking.Date,
			booking.TurfType.String(),
			strings.Join(booking.Slots, ";"),
			booking.CustomerName,
			booking.CustomerEmail,
			booking.CustomerPhone,
			booking.Status.String(),
			strconv.FormatInt(booking.Total, 10),
			strconv.FormatInt(booking.Advance, 10),
			strconv.FormatInt(booking.Remaining, 10),
			booking.PaymentRef,
			booking.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	span.SetAttributes(attribute.Int("rows", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return nil
}

func validateRange(from, to string) error {
	if err := domain.ValidateDate(from); err != nil {
		return err
	}
	if err := domain.ValidateDate(to); err != nil {
		return err
	}
	if from > to {
		return fmt.Errorf("%w: range start %s is after end %s", domain.ErrInvalidDate, from, to)
	}
	return nil
}

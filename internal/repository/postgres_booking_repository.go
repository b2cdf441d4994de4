package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aswindil12/algus-turf/internal/domain"
	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

const bookingColumns = `
	id, customer_name, customer_email, customer_phone, turf_type,
	to_char(date, 'YYYY-MM-DD'), slots, total, advance, remaining,
	status, payment_ref, confirmed_at, cancelled_at, created_at, updated_at`

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool *pgxpool.Pool

	// sharedField treats all turf types as one physical resource when
	// checking slot conflicts. See the booking.shared_field setting.
	sharedField bool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool, sharedField bool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool, sharedField: sharedField}
}

// Create inserts a booking inside a transaction that serializes writers on
// the same (date, turf) via an advisory lock and rejects slot overlaps with
// surviving bookings. This is the commit side of the "read availability,
// then book" boundary; the Redis hold is the fast path in front of it.
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("turf_type", booking.TurfType.String()),
		attribute.String("date", booking.Date),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	lockKey := booking.Date
	if !r.sharedField {
		lockKey = booking.Date + ":" + booking.TurfType.String()
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("acquire booking lock: %w", err)
	}

	conflictQuery := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE date = $1::date
			  AND status IN ('pending', 'confirmed')
			  AND slots && $2
			  AND ($3 OR turf_type = $4)
		)`
	var conflict bool
	err = tx.QueryRow(ctx, conflictQuery,
		booking.Date, booking.Slots, r.sharedField, booking.TurfType.String(),
	).Scan(&conflict)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("check slot conflicts: %w", err)
	}
	if conflict {
		span.SetStatus(codes.Error, "slot conflict")
		return domain.ErrSlotUnavailable
	}

	insertQuery := `
		INSERT INTO bookings (
			id, customer_name, customer_email, customer_phone, turf_type,
			date, slots, total, advance, remaining,
			status, payment_ref, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6::date, $7, $8, $9, $10,
			$11, $12, $13, $14
		)`
	_, err = tx.Exec(ctx, insertQuery,
		booking.ID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.TurfType.String(),
		booking.Date,
		booking.Slots,
		booking.Total,
		booking.Advance,
		booking.Remaining,
		booking.Status.String(),
		nullString(booking.PaymentRef),
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit booking tx: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// Update persists status, payment reference and transition timestamps
func (r *PostgresBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.update")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("status", booking.Status.String()),
	)

	query := `
		UPDATE bookings
		SET status = $2, payment_ref = $3, confirmed_at = $4, cancelled_at = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.Status.String(),
		nullString(booking.PaymentRef),
		booking.ConfirmedAt,
		booking.CancelledAt,
		booking.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// List retrieves bookings matching the filter, newest first
func (r *PostgresBookingRepository) List(ctx context.Context, filter ListFilter) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list")
	defer span.End()

	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE ($1 = '' OR date = $1::date)
		  AND ($2 = '' OR turf_type = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, filter.Date, filter.TurfType, filter.Status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// ListByDate retrieves all bookings for a calendar date
func (r *PostgresBookingRepository) ListByDate(ctx context.Context, date string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_date")
	defer span.End()

	span.SetAttributes(attribute.String("date", date))

	query := `SELECT` + bookingColumns + ` FROM bookings WHERE date = $1::date ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list bookings by date: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// ListRange retrieves non-cancelled bookings with from <= date <= to,
// both ends inclusive.
func (r *PostgresBookingRepository) ListRange(ctx context.Context, from, to string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_range")
	defer span.End()

	span.SetAttributes(attribute.String("from", from), attribute.String("to", to))

	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE date >= $1::date AND date <= $2::date AND status <> 'cancelled'
		ORDER BY date, created_at`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list bookings in range: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// ListStalePending retrieves pending bookings created before the cutoff
func (r *PostgresBookingRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_stale_pending")
	defer span.End()

	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list stale pending bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// CountUpcomingConfirmed counts confirmed bookings dated strictly after the given date
func (r *PostgresBookingRepository) CountUpcomingConfirmed(ctx context.Context, after string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.count_upcoming_confirmed")
	defer span.End()

	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE status = 'confirmed' AND date > $1::date`
	if err := r.pool.QueryRow(ctx, query, after).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("count upcoming confirmed: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return count, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	var (
		turfType   string
		status     string
		paymentRef *string
	)
	err := row.Scan(
		&booking.ID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&turfType,
		&booking.Date,
		&booking.Slots,
		&booking.Total,
		&booking.Advance,
		&booking.Remaining,
		&status,
		&paymentRef,
		&booking.ConfirmedAt,
		&booking.CancelledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.TurfType = domain.TurfType(turfType)
	booking.Status = domain.BookingStatus(status)
	if paymentRef != nil {
		booking.PaymentRef = *paymentRef
	}
	return booking, nil
}

func collectBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

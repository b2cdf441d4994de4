package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

var (
	// Booking counters
	BookingsCreated   *telemetry.Counter
	BookingsConfirmed *telemetry.Counter
	BookingsCancelled *telemetry.Counter
	BookingsTimedOut  *telemetry.Counter
	BookingsFailed    *telemetry.Counter

	// Histograms
	PaymentConfirmDuration *telemetry.Histogram
	RequestDuration        *telemetry.Histogram

	// Gauges
	PendingBookings *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all booking metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	BookingsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "turf_bookings_created_total",
		Description: "Total number of pending bookings created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "turf_bookings_confirmed_total",
		Description: "Total number of bookings confirmed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "turf_bookings_cancelled_total",
		Description: "Total number of cancelled bookings",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsTimedOut, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "turf_bookings_payment_timeouts_total",
		Description: "Total number of pending bookings timed out waiting for payment",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "turf_bookings_failed_total",
		Description: "Total number of failed booking attempts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	// Duration from booking creation to payment confirmation
	PaymentConfirmDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "turf_booking_payment_duration_seconds",
		Description: "Duration from booking creation to payment confirmation",
		Unit:        "s",
	}, []float64{1, 5, 10, 30, 60, 120, 300, 600, 900}) // 1s to 15min
	if err != nil {
		return err
	}

	// Request duration histogram for latency tracking (p50, p90, p99)
	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "turf_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}) // 5ms to 10s
	if err != nil {
		return err
	}

	PendingBookings, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "turf_pending_bookings",
		Description: "Current number of bookings awaiting payment",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordBookingCreated records a pending booking creation
func RecordBookingCreated(ctx context.Context, turfType string, slotCount int) {
	if BookingsCreated != nil {
		BookingsCreated.Inc(ctx,
			attribute.String("turf_type", turfType),
			attribute.Int("slot_count", slotCount),
		)
	}
	if PendingBookings != nil {
		PendingBookings.Inc(ctx)
	}
}

// RecordConfirmation records a booking confirmation
func RecordConfirmation(ctx context.Context, turfType string, durationSeconds float64) {
	if BookingsConfirmed != nil {
		BookingsConfirmed.Inc(ctx,
			attribute.String("turf_type", turfType),
		)
	}
	if PaymentConfirmDuration != nil {
		PaymentConfirmDuration.Record(ctx, durationSeconds,
			attribute.String("turf_type", turfType),
		)
	}
	if PendingBookings != nil {
		PendingBookings.Dec(ctx)
	}
}

// RecordCancellation records a booking cancellation
func RecordCancellation(ctx context.Context, turfType string, wasPending bool) {
	if BookingsCancelled != nil {
		BookingsCancelled.Inc(ctx,
			attribute.String("turf_type", turfType),
		)
	}
	if wasPending && PendingBookings != nil {
		PendingBookings.Dec(ctx)
	}
}

// RecordPaymentTimeout records pending bookings timed out by the sweeper
func RecordPaymentTimeout(ctx context.Context, count int64) {
	if BookingsTimedOut != nil {
		BookingsTimedOut.Add(ctx, count)
	}
	if PendingBookings != nil {
		PendingBookings.Add(ctx, -count)
	}
}

// RecordFailure records a failed booking attempt
func RecordFailure(ctx context.Context, turfType, reason string) {
	if BookingsFailed != nil {
		BookingsFailed.Inc(ctx,
			attribute.String("turf_type", turfType),
			attribute.String("reason", reason),
		)
	}
}

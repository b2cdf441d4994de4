package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Aswindil12/algus-turf/internal/service"
	"github.com/Aswindil12/algus-turf/pkg/logger"
)

// PaymentTimeoutWorkerConfig contains configuration for the payment timeout worker
type PaymentTimeoutWorkerConfig struct {
	// ScanInterval is the interval between scans for stale pending bookings
	ScanInterval time.Duration
	// BatchSize is the maximum number of bookings to expire in each scan
	BatchSize int
}

// DefaultPaymentTimeoutWorkerConfig returns default configuration
func DefaultPaymentTimeoutWorkerConfig() *PaymentTimeoutWorkerConfig {
	return &PaymentTimeoutWorkerConfig{
		ScanInterval: 30 * time.Second,
		BatchSize:    100,
	}
}

// PaymentTimeoutWorker scans for pending bookings whose payment window has
// elapsed and transitions them to payment_timed_out
type PaymentTimeoutWorker struct {
	bookingService service.BookingService
	config         *PaymentTimeoutWorkerConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool

	// Stats
	totalExpired     int64
	lastScanTime     time.Time
	lastExpiredCount int
}

// NewPaymentTimeoutWorker creates a new payment timeout worker
func NewPaymentTimeoutWorker(bookingService service.BookingService, config *PaymentTimeoutWorkerConfig) *PaymentTimeoutWorker {
	if config == nil {
		config = DefaultPaymentTimeoutWorkerConfig()
	}

	return &PaymentTimeoutWorker{
		bookingService: bookingService,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the payment timeout worker
func (w *PaymentTimeoutWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("payment timeout worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting payment timeout worker")

	w.wg.Add(1)
	go w.scanStalePending(ctx)

	return nil
}

// Stop stops the payment timeout worker
func (w *PaymentTimeoutWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping payment timeout worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Payment timeout worker stopped")
}

// scanStalePending periodically expires stale pending bookings
func (w *PaymentTimeoutWorker) scanStalePending(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.processStalePending(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.processStalePending(ctx)
		}
	}
}

// processStalePending runs one expiry pass
func (w *PaymentTimeoutWorker) processStalePending(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	expired, err := w.bookingService.ExpirePayments(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Failed to expire stale pending bookings: %v", err))
		return
	}

	w.mu.Lock()
	w.lastExpiredCount = expired
	w.totalExpired += int64(expired)
	w.mu.Unlock()

	if expired > 0 {
		w.log.Info(fmt.Sprintf("Expired %d bookings past their payment window", expired))
	}
}

// GetStats returns worker statistics
func (w *PaymentTimeoutWorker) GetStats() *PaymentTimeoutWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &PaymentTimeoutWorkerStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
	}
}

// PaymentTimeoutWorkerStats contains worker statistics
type PaymentTimeoutWorkerStats struct {
	IsRunning        bool      `json:"is_running"`
	TotalExpired     int64     `json:"total_expired"`
	LastScanTime     time.Time `json:"last_scan_time"`
	LastExpiredCount int       `json:"last_expired_count"`
}

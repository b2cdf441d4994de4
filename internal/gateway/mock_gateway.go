package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// alphanumericChars for generating Stripe-compatible IDs
const alphanumericChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomAlphanumeric generates a random alphanumeric string of given length
func randomAlphanumeric(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumericChars[rand.Intn(len(alphanumericChars))]
	}
	return string(b)
}

// mockIntent is the mock gateway's record of a payment intent
type mockIntent struct {
	Status   string
	Amount   int64
	Currency string
}

// MockGateway implements PaymentGateway for development and load testing
type MockGateway struct {
	config  *MockGatewayConfig
	intents sync.Map
	mu      sync.RWMutex
}

// MockGatewayConfig holds configuration for the mock gateway
type MockGatewayConfig struct {
	// SuccessRate is the probability of successful payment (0.0 to 1.0)
	SuccessRate float64

	// DelayMs is the simulated processing delay in milliseconds
	DelayMs int
}

// DefaultMockGatewayConfig returns default configuration
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{
		SuccessRate: 0.95,
		DelayMs:     100,
	}
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}

	if config.SuccessRate < 0 {
		config.SuccessRate = 0
	}
	if config.SuccessRate > 1 {
		config.SuccessRate = 1
	}

	return &MockGateway{config: config}
}

func (g *MockGateway) delay(ctx context.Context) error {
	if g.config.DelayMs <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(g.config.DelayMs) * time.Millisecond):
		return nil
	}
}

// CreatePaymentIntent creates a mock PaymentIntent
func (g *MockGateway) CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntentResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("payment intent request is required")
	}

	if err := g.delay(ctx); err != nil {
		return nil, err
	}

	// Stripe-compatible ID format (alphanumeric only)
	paymentIntentID := fmt.Sprintf("pi_mock_%s", randomAlphanumeric(24))
	clientSecret := fmt.Sprintf("%s_secret_%s", paymentIntentID, randomAlphanumeric(24))

	g.intents.Store(paymentIntentID, &mockIntent{
		Status:   "requires_payment_method",
		Amount:   req.Amount,
		Currency: req.Currency,
	})

	return &PaymentIntentResponse{
		PaymentIntentID: paymentIntentID,
		ClientSecret:    clientSecret,
		Status:          "requires_payment_method",
		Amount:          req.Amount,
		Currency:        req.Currency,
	}, nil
}

// ConfirmPaymentIntent settles a mock PaymentIntent, succeeding with the
// configured probability
func (g *MockGateway) ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntentResponse, error) {
	if paymentIntentID == "" {
		return nil, fmt.Errorf("payment intent ID is required")
	}

	if err := g.delay(ctx); err != nil {
		return nil, err
	}

	v, ok := g.intents.Load(paymentIntentID)
	if !ok {
		return nil, fmt.Errorf("payment intent not found: %s", paymentIntentID)
	}
	intent := v.(*mockIntent)

	if rand.Float64() < g.GetSuccessRate() {
		intent.Status = "succeeded"
	} else {
		intent.Status = "failed"
	}
	g.intents.Store(paymentIntentID, intent)

	return &PaymentIntentResponse{
		PaymentIntentID: paymentIntentID,
		Status:          intent.Status,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
	}, nil
}

// Refund marks a settled mock intent as refunded
func (g *MockGateway) Refund(ctx context.Context, paymentIntentID string, amount int64) error {
	if paymentIntentID == "" {
		return fmt.Errorf("payment intent ID is required")
	}

	if err := g.delay(ctx); err != nil {
		return err
	}

	v, ok := g.intents.Load(paymentIntentID)
	if !ok {
		return fmt.Errorf("payment intent not found: %s", paymentIntentID)
	}
	intent := v.(*mockIntent)
	intent.Status = "refunded"
	g.intents.Store(paymentIntentID, intent)

	return nil
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}

// SetSuccessRate updates the success rate (for testing)
func (g *MockGateway) SetSuccessRate(rate float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	g.config.SuccessRate = rate
}

// GetSuccessRate returns the current success rate
func (g *MockGateway) GetSuccessRate() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config.SuccessRate
}

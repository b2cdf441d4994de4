package gateway

import (
	"context"
	"fmt"
	"strings"
)

// PaymentIntentRequest asks the gateway to collect a booking's advance.
// Amount is in rupees; gateways convert to the smallest currency unit.
type PaymentIntentRequest struct {
	BookingID   string
	Amount      int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// PaymentIntentResponse carries the gateway's view of an intent.
type PaymentIntentResponse struct {
	PaymentIntentID string
	ClientSecret    string
	Status          string
	Amount          int64
	Currency        string
}

// PaymentGateway abstracts the payment provider behind the advance flow.
type PaymentGateway interface {
	// CreatePaymentIntent opens an intent for the booking's advance.
	CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntentResponse, error)

	// ConfirmPaymentIntent checks the intent after client-side completion.
	ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntentResponse, error)

	// Refund returns an amount against a settled intent.
	Refund(ctx context.Context, paymentIntentID string, amount int64) error

	// Name returns the gateway name
	Name() string
}

// GatewayType represents the type of payment gateway
type GatewayType string

const (
	GatewayTypeMock   GatewayType = "mock"
	GatewayTypeStripe GatewayType = "stripe"
)

// GatewayConfig holds provider credentials
type GatewayConfig struct {
	SecretKey     string
	WebhookSecret string
	Environment   string
}

// NewPaymentGateway creates a payment gateway based on the type
func NewPaymentGateway(gatewayType string, config *GatewayConfig) (PaymentGateway, error) {
	switch GatewayType(strings.ToLower(gatewayType)) {
	case GatewayTypeMock, "":
		// Default to mock gateway
		return NewMockGateway(DefaultMockGatewayConfig()), nil

	case GatewayTypeStripe:
		if config == nil || config.SecretKey == "" {
			return nil, fmt.Errorf("stripe secret key is required")
		}
		return NewStripeGateway(&StripeGatewayConfig{
			SecretKey:     config.SecretKey,
			WebhookSecret: config.WebhookSecret,
			Environment:   config.Environment,
		})

	default:
		return nil, fmt.Errorf("unsupported gateway type: %s", gatewayType)
	}
}

package services

import (
	"context"
	"strconv"
	"sync"
)

// GatewaySubscription is what the payment provider returns for a new subscription.
type GatewaySubscription struct {
	ID     string
	Status string
}

// PaymentGateway is the external payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, doctorID int64, priceID string) (string, error)
	CreateSubscription(ctx context.Context, doctorID int64, priceID string) (GatewaySubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// MockGateway stands in for the real provider. Every call succeeds and is remembered.
type MockGateway struct {
	mu        sync.Mutex
	Checkouts []string
	Cancelled []string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) CreateCheckoutSession(ctx context.Context, doctorID int64, priceID string) (string, error) {
	g.mu.Lock()
	g.Checkouts = append(g.Checkouts, strconv.FormatInt(doctorID, 10)+":"+priceID)
	g.mu.Unlock()
	return "demo_session_id", nil
}

func (g *MockGateway) CreateSubscription(ctx context.Context, doctorID int64, priceID string) (GatewaySubscription, error) {
	return GatewaySubscription{ID: "demo_subscription_id", Status: "active"}, nil
}

func (g *MockGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	g.mu.Lock()
	g.Cancelled = append(g.Cancelled, subscriptionID)
	g.mu.Unlock()
	return nil
}

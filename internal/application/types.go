package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

type Config struct {
	ServiceName string
	Currency    string

	// EventDedupTTL bounds how long processed webhook event ids are
	// remembered. Gateways stop redelivering well inside this window.
	EventDedupTTL time.Duration

	// IntentRateLimitThreshold caps how many intents one buyer may open
	// per IntentRateLimitWindow.
	IntentRateLimitThreshold int
	IntentRateLimitWindow    time.Duration

	AnalyticsDefaultDays int
}

type Dependencies struct {
	Config    Config
	Sales     ports.SaleRepository
	Payments  ports.PaymentRepository
	Stores    ports.StoreRepository
	Analytics ports.AnalyticsRepository
	Gateway   ports.PaymentGateway
	Verifier  ports.SignatureVerifier
	Dedup     ports.EventDedupStore
	RateLimit ports.RateLimitStore
}

type CreateIntentInput struct {
	SaleID          uuid.UUID
	BuyerID         uuid.UUID
	ShippingAddress domain.PostalAddress
	BillingAddress  domain.PostalAddress
}

type CreateIntentResult struct {
	ClientSecret string
	PaymentID    uuid.UUID
	Amount       float64
	Currency     string
}

type RefundInput struct {
	PaymentID   uuid.UUID
	RequesterID uuid.UUID
	Reason      string
}

type RefundResult struct {
	RefundID string
	Amount   float64
	Status   string
}

// WebhookOutcome tells the HTTP adapter how to answer the gateway.
// Acknowledged is true for every terminal outcome the gateway should not
// redeliver, including unknown kinds and events this system never issued.
type WebhookOutcome struct {
	Acknowledged bool
	Kind         domain.EventKind
	Duplicate    bool
}

type ListPaymentsInput struct {
	UserID uuid.UUID
	Role   string
	Page   int
	Limit  int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ListPaymentsResult struct {
	Payments   []domain.Payment
	Pagination Pagination
}

// AnalyticsResult pairs the windowed payment summary with the seller's
// store. Store is nil when the seller has no storefront yet.
type AnalyticsResult struct {
	Summary    ports.SellerSummary `json:"summary"`
	Store      *domain.Store       `json:"store,omitempty"`
	WindowDays int                 `json:"window_days"`
}

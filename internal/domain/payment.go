package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCanceled  PaymentStatus = "canceled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records one purchase attempt against a sale and tracks its
// correlation with the external gateway. Amount is fixed at creation and
// never recalculated from the sale row.
type Payment struct {
	PaymentID       uuid.UUID      `json:"payment_id"`
	SaleID          uuid.UUID      `json:"sale_id"`
	BuyerID         uuid.UUID      `json:"buyer_id"`
	SellerID        uuid.UUID      `json:"seller_id"`
	GatewayIntentID string         `json:"gateway_intent_id"`
	GatewayChargeID string         `json:"gateway_charge_id,omitempty"`
	Amount          float64        `json:"amount"`
	Currency        string         `json:"currency"`
	Status          PaymentStatus  `json:"status"`
	ShippingAddress PostalAddress  `json:"shipping_address"`
	BillingAddress  PostalAddress  `json:"billing_address"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// VisibleTo reports whether the given user is a party to the payment.
func (p Payment) VisibleTo(userID uuid.UUID) bool {
	return p.BuyerID == userID || p.SellerID == userID
}

// CanTransition enforces the payment state machine: a pending payment
// settles exactly once, and only a succeeded payment can be refunded.
func CanTransition(from, to PaymentStatus) bool {
	switch from {
	case PaymentStatusPending:
		return to == PaymentStatusSucceeded || to == PaymentStatusFailed || to == PaymentStatusCanceled
	case PaymentStatusSucceeded:
		return to == PaymentStatusRefunded
	default:
		return false
	}
}

// ToMinorUnits rounds a decimal amount to the currency's minor unit,
// matching what is sent to the gateway.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts a gateway minor-unit amount back to decimal.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

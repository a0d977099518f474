package ports

import (
	"context"
	"time"

	"github.com/KB-design87/plundora-backend/internal/domain"
)

// CreateIntentParams describes the charge the gateway should authorize.
// Amount is in the currency's minor unit; metadata correlates the intent
// back to local rows when the webhook arrives.
type CreateIntentParams struct {
	AmountMinor int64
	Currency    string
	Description string
	Metadata    map[string]string
	Shipping    domain.PostalAddress
}

type IntentResult struct {
	IntentID     string
	ClientSecret string
}

type RefundRequest struct {
	IntentID string
	Reason   string
	Metadata map[string]string
}

type RefundResult struct {
	RefundID    string
	AmountMinor int64
	Status      string
}

// PaymentGateway is the external payment processor. Both calls are
// blocking I/O bounded by the client's own timeout; a timeout surfaces as
// an error and must never be treated as success.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (IntentResult, error)
	CreateRefund(ctx context.Context, req RefundRequest) (RefundResult, error)
}

// SignatureVerifier authenticates a raw webhook body against the shared
// webhook secret. Verification must happen before any decoding or
// processing of the payload.
type SignatureVerifier interface {
	Verify(payload []byte, signatureHeader string, now time.Time) error
}

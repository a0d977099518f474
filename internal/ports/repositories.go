package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/KB-design87/plundora-backend/internal/domain"
)

type SaleRepository interface {
	GetByID(ctx context.Context, saleID uuid.UUID) (domain.Sale, error)
}

// PaymentQuery filters ListByUser. Role narrows the listing to payments
// where the user is the buyer ("purchases"), the seller ("sales"), or
// either (empty string).
type PaymentQuery struct {
	Role   string
	Limit  int
	Offset int
}

// ReconcileSucceededParams carries everything the succeeded transaction
// touches: the payment row (by gateway intent id), its sale, and the
// seller's store counter.
type ReconcileSucceededParams struct {
	IntentID  string
	ChargeID  string
	SaleID    uuid.UUID
	SellerID  uuid.UUID
	SettledAt time.Time
}

// RefundParams applies the local half of a refund after the gateway call
// has already succeeded.
type RefundParams struct {
	PaymentID  uuid.UUID
	SaleID     uuid.UUID
	Metadata   map[string]any
	RefundedAt time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment domain.Payment) error
	GetByID(ctx context.Context, paymentID uuid.UUID) (domain.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (domain.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, query PaymentQuery) ([]domain.Payment, int, error)

	// ReconcileSucceededTx atomically marks the payment succeeded, the
	// sale sold, and increments the seller store's total_sales. The
	// payment row is only moved from pending; any other current status
	// returns domain.ErrInvalidState and nothing is changed.
	ReconcileSucceededTx(ctx context.Context, params ReconcileSucceededParams) error

	// SettleFromPending moves a pending payment to failed or canceled.
	// No sale mutation happens on these branches.
	SettleFromPending(ctx context.Context, intentID string, status domain.PaymentStatus, at time.Time) error

	// ApplyRefundTx atomically marks the payment refunded with merged
	// metadata and reverts the sale to active with sold_at cleared.
	ApplyRefundTx(ctx context.Context, params RefundParams) error
}

type StoreRepository interface {
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (domain.Store, error)
}

// AnalyticsWindow bounds the seller summary query.
type AnalyticsWindow struct {
	SellerID uuid.UUID
	Since    time.Time
}

// SellerSummary aggregates a seller's payments over a trailing window.
type SellerSummary struct {
	TotalPayments  int     `json:"total_payments"`
	TotalRevenue   float64 `json:"total_revenue"`
	AveragePayment float64 `json:"average_payment"`
	SucceededCount int     `json:"succeeded_count"`
	FailedCount    int     `json:"failed_count"`
	RefundedCount  int     `json:"refunded_count"`
}

type AnalyticsRepository interface {
	SellerSummary(ctx context.Context, window AnalyticsWindow) (SellerSummary, error)
}

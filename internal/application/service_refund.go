package application

import (
	"context"
	"fmt"
	"time"

	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

// RefundPayment reverses a succeeded payment. The gateway call happens
// first and a failure there leaves every local row untouched. The local
// update after a successful gateway refund is not compensated if it
// fails; that gap is logged as an operational incident.
func (s *Service) RefundPayment(ctx context.Context, input RefundInput) (RefundResult, error) {
	payment, err := s.payments.GetByID(ctx, input.PaymentID)
	if err != nil {
		return RefundResult{}, err
	}
	if !payment.VisibleTo(input.RequesterID) {
		return RefundResult{}, domain.ErrNotFound
	}
	if payment.Status != domain.PaymentStatusSucceeded {
		return RefundResult{}, fmt.Errorf("%w: only successful payments can be refunded", domain.ErrInvalidState)
	}

	reason := input.Reason
	if reason == "" {
		reason = "Customer requested refund"
	}
	refund, err := s.gateway.CreateRefund(ctx, ports.RefundRequest{
		IntentID: payment.GatewayIntentID,
		Reason:   "requested_by_customer",
		Metadata: map[string]string{
			"reason":      reason,
			"refunded_by": input.RequesterID.String(),
		},
	})
	if err != nil {
		s.logger().ErrorContext(ctx, "gateway refund failed",
			"operation", "refund_payment",
			"outcome", "failure",
			"payment_id", payment.PaymentID.String(),
			"error", err.Error(),
		)
		return RefundResult{}, fmt.Errorf("%w: refund: %v", domain.ErrGateway, err)
	}

	now := s.nowFn()
	metadata := mergeRefundMetadata(payment.Metadata, refund, reason, now)
	if err := s.payments.ApplyRefundTx(ctx, ports.RefundParams{
		PaymentID:  payment.PaymentID,
		SaleID:     payment.SaleID,
		Metadata:   metadata,
		RefundedAt: now,
	}); err != nil {
		// The gateway has already refunded; local state is now behind.
		// There is no automated reconciliation job, so flag loudly.
		s.logger().ErrorContext(ctx, "local refund update failed after gateway refund",
			"operation", "refund_payment",
			"outcome", "inconsistent",
			"payment_id", payment.PaymentID.String(),
			"gateway_refund_id", refund.RefundID,
			"error", err.Error(),
		)
		return RefundResult{}, err
	}

	s.logger().InfoContext(ctx, "payment refunded",
		"operation", "refund_payment",
		"outcome", "success",
		"payment_id", payment.PaymentID.String(),
		"gateway_refund_id", refund.RefundID,
	)
	return RefundResult{
		RefundID: refund.RefundID,
		Amount:   domain.FromMinorUnits(refund.AmountMinor),
		Status:   refund.Status,
	}, nil
}

// mergeRefundMetadata appends refund details under a "refund" key without
// discarding anything recorded at intent creation.
func mergeRefundMetadata(existing map[string]any, refund ports.RefundResult, reason string, at time.Time) map[string]any {
	merged := make(map[string]any, len(existing)+1)
	for k, v := range existing {
		merged[k] = v
	}
	merged["refund"] = map[string]any{
		"refund_id":     refund.RefundID,
		"refund_amount": domain.FromMinorUnits(refund.AmountMinor),
		"refund_reason": reason,
		"refunded_at":   at.Format(time.RFC3339),
	}
	return merged
}

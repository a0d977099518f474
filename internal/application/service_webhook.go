package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

// HandleGatewayEvent is the webhook reconciliation entrypoint. The order
// is load-bearing: signature verification runs before anything touches
// the payload, and the three-row settlement update is one transaction so
// a partially applied success is never observable.
func (s *Service) HandleGatewayEvent(ctx context.Context, rawBody []byte, signatureHeader string) (WebhookOutcome, error) {
	if err := s.verifier.Verify(rawBody, signatureHeader, s.nowFn()); err != nil {
		s.logger().WarnContext(ctx, "webhook signature rejected",
			"operation", "handle_gateway_event",
			"outcome", "rejected",
			"error", err.Error(),
		)
		return WebhookOutcome{}, domain.ErrSignatureInvalid
	}

	event, err := domain.ParsePaymentEvent(rawBody)
	if err != nil {
		return WebhookOutcome{}, err
	}

	if event.Kind == domain.EventKindUnknown {
		s.logger().InfoContext(ctx, "unhandled gateway event type",
			"operation", "handle_gateway_event",
			"outcome", "ignored",
			"event_type", event.RawKind,
		)
		return WebhookOutcome{Acknowledged: true, Kind: event.Kind}, nil
	}

	if s.dedup != nil {
		first, dedupErr := s.dedup.MarkIfFirst(ctx, event.EventID, s.cfg.EventDedupTTL)
		if dedupErr != nil {
			// Dedup is an optimization over the pending-only guard;
			// fall through and let status gating protect correctness.
			s.logger().WarnContext(ctx, "event dedup store unavailable",
				"operation", "handle_gateway_event",
				"outcome", "degraded",
				"error", dedupErr.Error(),
			)
		} else if !first {
			s.logger().InfoContext(ctx, "duplicate gateway event acknowledged",
				"operation", "handle_gateway_event",
				"outcome", "duplicate",
				"event_id", event.EventID,
			)
			return WebhookOutcome{Acknowledged: true, Kind: event.Kind, Duplicate: true}, nil
		}
	}

	outcome, err := s.applyEvent(ctx, event)
	if err != nil && s.dedup != nil {
		// Processing failed after the dedup mark; forget the id so the
		// gateway's retry is not swallowed as a duplicate.
		_ = s.dedup.Forget(ctx, event.EventID)
	}
	return outcome, err
}

func (s *Service) applyEvent(ctx context.Context, event domain.PaymentEvent) (WebhookOutcome, error) {
	payment, err := s.payments.GetByIntentID(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Event for an intent this system never created. Ack so the
			// gateway does not retry forever.
			s.logger().InfoContext(ctx, "gateway event for unknown intent acknowledged",
				"operation", "apply_gateway_event",
				"outcome", "ignored",
				"event_id", event.EventID,
				"intent_id", event.IntentID,
			)
			return WebhookOutcome{Acknowledged: true, Kind: event.Kind}, nil
		}
		return WebhookOutcome{}, err
	}

	switch event.Kind {
	case domain.EventKindSucceeded:
		return s.applySucceeded(ctx, event, payment.SaleID, payment.SellerID)
	case domain.EventKindFailed:
		return s.applySettlement(ctx, event, domain.PaymentStatusFailed)
	case domain.EventKindCanceled:
		return s.applySettlement(ctx, event, domain.PaymentStatusCanceled)
	default:
		return WebhookOutcome{Acknowledged: true, Kind: event.Kind}, nil
	}
}

func (s *Service) applySucceeded(ctx context.Context, event domain.PaymentEvent, saleID, sellerID uuid.UUID) (WebhookOutcome, error) {
	err := s.payments.ReconcileSucceededTx(ctx, ports.ReconcileSucceededParams{
		IntentID:  event.IntentID,
		ChargeID:  event.LatestChargeID,
		SaleID:    saleID,
		SellerID:  sellerID,
		SettledAt: s.nowFn(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			// Already settled; redelivery after a crash between commit
			// and acknowledgment lands here. Safe to ack.
			return WebhookOutcome{Acknowledged: true, Kind: event.Kind, Duplicate: true}, nil
		}
		return WebhookOutcome{}, fmt.Errorf("reconcile succeeded intent %s: %w", event.IntentID, err)
	}

	s.logger().InfoContext(ctx, "payment reconciled",
		"operation", "apply_gateway_event",
		"outcome", "success",
		"event_id", event.EventID,
		"intent_id", event.IntentID,
		"sale_id", saleID.String(),
	)
	return WebhookOutcome{Acknowledged: true, Kind: event.Kind}, nil
}

func (s *Service) applySettlement(ctx context.Context, event domain.PaymentEvent, status domain.PaymentStatus) (WebhookOutcome, error) {
	err := s.payments.SettleFromPending(ctx, event.IntentID, status, s.nowFn())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			return WebhookOutcome{Acknowledged: true, Kind: event.Kind, Duplicate: true}, nil
		}
		return WebhookOutcome{}, fmt.Errorf("settle intent %s as %s: %w", event.IntentID, status, err)
	}

	s.logger().InfoContext(ctx, "payment settled without sale mutation",
		"operation", "apply_gateway_event",
		"outcome", "success",
		"event_id", event.EventID,
		"intent_id", event.IntentID,
		"status", string(status),
	)
	return WebhookOutcome{Acknowledged: true, Kind: event.Kind}, nil
}

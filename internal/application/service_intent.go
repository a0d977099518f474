package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

// CreatePaymentIntent validates purchasability, opens an intent at the
// gateway, and persists the pending payment row. The sale itself stays
// active until the gateway confirms settlement through the webhook, so an
// abandoned intent never blocks the listing.
func (s *Service) CreatePaymentIntent(ctx context.Context, input CreateIntentInput) (CreateIntentResult, error) {
	if input.BuyerID == uuid.Nil {
		return CreateIntentResult{}, domain.ErrUnauthorized
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return CreateIntentResult{}, err
	}
	if err := s.enforceRateLimit(
		ctx,
		"payments:intent:"+input.BuyerID.String(),
		s.cfg.IntentRateLimitThreshold,
		s.cfg.IntentRateLimitWindow,
	); err != nil {
		return CreateIntentResult{}, err
	}

	sale, err := s.sales.GetByID(ctx, input.SaleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return CreateIntentResult{}, domain.ErrNotAvailable
		}
		return CreateIntentResult{}, fmt.Errorf("load sale: %w", err)
	}
	if !sale.Purchasable() {
		return CreateIntentResult{}, domain.ErrNotAvailable
	}
	if sale.SellerID == input.BuyerID {
		return CreateIntentResult{}, fmt.Errorf("%w: you cannot purchase your own items", domain.ErrInvalidOperation)
	}

	amountMinor := domain.ToMinorUnits(sale.Price + sale.ShippingCost)
	intent, err := s.gateway.CreateIntent(ctx, ports.CreateIntentParams{
		AmountMinor: amountMinor,
		Currency:    s.cfg.Currency,
		Description: "Purchase of " + sale.Title,
		Metadata: map[string]string{
			"sale_id":   sale.SaleID.String(),
			"seller_id": sale.SellerID.String(),
			"buyer_id":  input.BuyerID.String(),
		},
		Shipping: input.ShippingAddress,
	})
	if err != nil {
		s.logger().ErrorContext(ctx, "gateway intent creation failed",
			"operation", "create_payment_intent",
			"outcome", "failure",
			"sale_id", sale.SaleID.String(),
			"error", err.Error(),
		)
		return CreateIntentResult{}, fmt.Errorf("%w: create intent: %v", domain.ErrGateway, err)
	}

	billing := input.BillingAddress
	if billing.IsZero() {
		billing = input.ShippingAddress
	}

	now := s.nowFn()
	payment := domain.Payment{
		PaymentID:       uuid.New(),
		SaleID:          sale.SaleID,
		BuyerID:         input.BuyerID,
		SellerID:        sale.SellerID,
		GatewayIntentID: intent.IntentID,
		Amount:          domain.FromMinorUnits(amountMinor),
		Currency:        s.cfg.Currency,
		Status:          domain.PaymentStatusPending,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  billing,
		Metadata: map[string]any{
			"sale_title":    sale.Title,
			"item_price":    sale.Price,
			"shipping_cost": sale.ShippingCost,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return CreateIntentResult{}, err
	}

	s.logger().InfoContext(ctx, "payment intent created",
		"operation", "create_payment_intent",
		"outcome", "success",
		"payment_id", payment.PaymentID.String(),
		"sale_id", sale.SaleID.String(),
		"amount_minor", amountMinor,
	)
	return CreateIntentResult{
		ClientSecret: intent.ClientSecret,
		PaymentID:    payment.PaymentID,
		Amount:       payment.Amount,
		Currency:     payment.Currency,
	}, nil
}

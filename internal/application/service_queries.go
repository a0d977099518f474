package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

// ListPayments returns the requester's payments as buyer, seller, or both.
func (s *Service) ListPayments(ctx context.Context, input ListPaymentsInput) (ListPaymentsResult, error) {
	if input.UserID == uuid.Nil {
		return ListPaymentsResult{}, domain.ErrUnauthorized
	}
	switch input.Role {
	case "", "all", "purchases", "sales":
	default:
		return ListPaymentsResult{}, fmt.Errorf("%w: unknown payment type %q", domain.ErrInvalidInput, input.Role)
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	role := input.Role
	if role == "all" {
		role = ""
	}
	payments, total, err := s.payments.ListByUser(ctx, input.UserID, ports.PaymentQuery{
		Role:   role,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return ListPaymentsResult{}, err
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return ListPaymentsResult{
		Payments: payments,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// GetPayment returns one payment, visible only to its buyer or seller.
func (s *Service) GetPayment(ctx context.Context, requesterID, paymentID uuid.UUID) (domain.Payment, error) {
	if requesterID == uuid.Nil {
		return domain.Payment{}, domain.ErrUnauthorized
	}
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	if !payment.VisibleTo(requesterID) {
		return domain.Payment{}, domain.ErrNotFound
	}
	return payment, nil
}

// SellerAnalytics aggregates the requester's seller-side payments over a
// trailing window of days, alongside their store's lifetime counters.
func (s *Service) SellerAnalytics(ctx context.Context, sellerID uuid.UUID, days int) (AnalyticsResult, error) {
	if sellerID == uuid.Nil {
		return AnalyticsResult{}, domain.ErrUnauthorized
	}
	if days <= 0 || days > 365 {
		days = s.cfg.AnalyticsDefaultDays
	}

	summary, err := s.analytics.SellerSummary(ctx, ports.AnalyticsWindow{
		SellerID: sellerID,
		Since:    s.nowFn().Add(-time.Duration(days) * 24 * time.Hour),
	})
	if err != nil {
		return AnalyticsResult{}, err
	}

	result := AnalyticsResult{Summary: summary, WindowDays: days}
	store, err := s.stores.GetByOwner(ctx, sellerID)
	switch {
	case err == nil:
		result.Store = &store
	case errors.Is(err, domain.ErrNotFound):
		// A seller can accrue payments before opening a storefront.
	default:
		return AnalyticsResult{}, err
	}
	return result, nil
}

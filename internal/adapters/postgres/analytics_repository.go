package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

type analyticsRepository struct {
	db *gorm.DB
}

type sellerSummaryRow struct {
	TotalPayments  int64
	TotalRevenue   float64
	AveragePayment float64
	SucceededCount int64
	FailedCount    int64
	RefundedCount  int64
}

func (r *analyticsRepository) SellerSummary(ctx context.Context, window ports.AnalyticsWindow) (ports.SellerSummary, error) {
	var row sellerSummaryRow
	err := r.db.WithContext(ctx).
		Model(&paymentModel{}).
		Select(
			"COUNT(*) AS total_payments, "+
				"COALESCE(SUM(amount) FILTER (WHERE status IN ?), 0) AS total_revenue, "+
				"COALESCE(AVG(amount) FILTER (WHERE status IN ?), 0) AS average_payment, "+
				"COUNT(*) FILTER (WHERE status = ?) AS succeeded_count, "+
				"COUNT(*) FILTER (WHERE status = ?) AS failed_count, "+
				"COUNT(*) FILTER (WHERE status = ?) AS refunded_count",
			[]string{string(domain.PaymentStatusSucceeded), string(domain.PaymentStatusRefunded)},
			[]string{string(domain.PaymentStatusSucceeded), string(domain.PaymentStatusRefunded)},
			string(domain.PaymentStatusSucceeded),
			string(domain.PaymentStatusFailed),
			string(domain.PaymentStatusRefunded),
		).
		Where("seller_id = ? AND created_at >= ?", window.SellerID, window.Since).
		Scan(&row).Error
	if err != nil {
		return ports.SellerSummary{}, err
	}
	return ports.SellerSummary{
		TotalPayments:  int(row.TotalPayments),
		TotalRevenue:   row.TotalRevenue,
		AveragePayment: row.AveragePayment,
		SucceededCount: int(row.SucceededCount),
		FailedCount:    int(row.FailedCount),
		RefundedCount:  int(row.RefundedCount),
	}, nil
}

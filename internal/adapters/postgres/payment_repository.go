package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KB-design87/plundora-backend/internal/domain"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

type paymentRepository struct {
	db *gorm.DB
}

func (r *paymentRepository) Create(ctx context.Context, payment domain.Payment) error {
	rec, err := toPaymentModel(payment)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			// A second local row for the same gateway intent is never
			// legal; the unique index is the source of truth.
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, paymentID uuid.UUID) (domain.Payment, error) {
	var rec paymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", paymentID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Payment{}, domain.ErrNotFound
		}
		return domain.Payment{}, err
	}
	return toDomainPayment(rec), nil
}

func (r *paymentRepository) GetByIntentID(ctx context.Context, intentID string) (domain.Payment, error) {
	var rec paymentModel
	if err := r.db.WithContext(ctx).Where("gateway_intent_id = ?", intentID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Payment{}, domain.ErrNotFound
		}
		return domain.Payment{}, err
	}
	return toDomainPayment(rec), nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, query ports.PaymentQuery) ([]domain.Payment, int, error) {
	base := r.db.WithContext(ctx).Model(&paymentModel{})
	switch query.Role {
	case "purchases":
		base = base.Where("buyer_id = ?", userID)
	case "sales":
		base = base.Where("seller_id = ?", userID)
	default:
		base = base.Where("buyer_id = ? OR seller_id = ?", userID, userID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []paymentModel
	if err := base.Order("created_at DESC").Limit(query.Limit).Offset(query.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	result := make([]domain.Payment, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainPayment(row))
	}
	return result, int(total), nil
}

// ReconcileSucceededTx applies the full settlement in one transaction.
// The guarded payment update doubles as the pending-only transition check:
// zero rows affected with an existing row means the payment already left
// pending, which is reported as ErrInvalidState so redeliveries ack.
func (r *paymentRepository) ReconcileSucceededTx(ctx context.Context, params ports.ReconcileSucceededParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":     string(domain.PaymentStatusSucceeded),
			"updated_at": params.SettledAt,
		}
		if params.ChargeID != "" {
			updates["gateway_charge_id"] = params.ChargeID
		}
		res := tx.Model(&paymentModel{}).
			Where("gateway_intent_id = ?", params.IntentID).
			Where("status = ?", string(domain.PaymentStatusPending)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return r.classifyMissedUpdate(tx, params.IntentID)
		}

		if err := tx.Model(&saleModel{}).
			Where("id = ?", params.SaleID).
			Updates(map[string]any{
				"status":     string(domain.SaleStatusSold),
				"sold_at":    params.SettledAt,
				"updated_at": params.SettledAt,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&storeModel{}).
			Where("user_id = ?", params.SellerID).
			Updates(map[string]any{
				"total_sales": gorm.Expr("total_sales + 1"),
				"updated_at":  params.SettledAt,
			}).Error
	})
}

func (r *paymentRepository) SettleFromPending(ctx context.Context, intentID string, status domain.PaymentStatus, at time.Time) error {
	if !domain.CanTransition(domain.PaymentStatusPending, status) {
		return domain.ErrInvalidState
	}
	res := r.db.WithContext(ctx).Model(&paymentModel{}).
		Where("gateway_intent_id = ?", intentID).
		Where("status = ?", string(domain.PaymentStatusPending)).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.classifyMissedUpdate(r.db.WithContext(ctx), intentID)
	}
	return nil
}

func (r *paymentRepository) ApplyRefundTx(ctx context.Context, params ports.RefundParams) error {
	metadata, err := json.Marshal(params.Metadata)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&paymentModel{}).
			Where("id = ?", params.PaymentID).
			Where("status = ?", string(domain.PaymentStatusSucceeded)).
			Updates(map[string]any{
				"status":     string(domain.PaymentStatusRefunded),
				"metadata":   datatypes.JSON(metadata),
				"updated_at": params.RefundedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidState
		}

		return tx.Model(&saleModel{}).
			Where("id = ?", params.SaleID).
			Updates(map[string]any{
				"status":     string(domain.SaleStatusActive),
				"sold_at":    nil,
				"updated_at": params.RefundedAt,
			}).Error
	})
}

// classifyMissedUpdate distinguishes "no such payment" from "payment
// exists but already settled" after a guarded update touched zero rows.
func (r *paymentRepository) classifyMissedUpdate(tx *gorm.DB, intentID string) error {
	var exists int64
	if err := tx.Model(&paymentModel{}).Where("gateway_intent_id = ?", intentID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidState
}

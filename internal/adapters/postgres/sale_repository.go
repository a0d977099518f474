package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KB-design87/plundora-backend/internal/domain"
)

type saleRepository struct {
	db *gorm.DB
}

func (r *saleRepository) GetByID(ctx context.Context, saleID uuid.UUID) (domain.Sale, error) {
	var rec saleModel
	if err := r.db.WithContext(ctx).Where("id = ?", saleID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Sale{}, domain.ErrNotFound
		}
		return domain.Sale{}, err
	}
	return toDomainSale(rec), nil
}

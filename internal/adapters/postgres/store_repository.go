package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KB-design87/plundora-backend/internal/domain"
)

type storeRepository struct {
	db *gorm.DB
}

func (r *storeRepository) GetByOwner(ctx context.Context, userID uuid.UUID) (domain.Store, error) {
	var rec storeModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Store{}, domain.ErrNotFound
		}
		return domain.Store{}, err
	}
	return toDomainStore(rec), nil
}

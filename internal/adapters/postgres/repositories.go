package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/KB-design87/plundora-backend/internal/ports"
)

type Repositories struct {
	Sales     ports.SaleRepository
	Payments  ports.PaymentRepository
	Stores    ports.StoreRepository
	Analytics ports.AnalyticsRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Sales:     &saleRepository{db: db},
		Payments:  &paymentRepository{db: db},
		Stores:    &storeRepository{db: db},
		Analytics: &analyticsRepository{db: db},
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type SaleStatus string

const (
	SaleStatusActive  SaleStatus = "active"
	SaleStatusSold    SaleStatus = "sold"
	SaleStatusPending SaleStatus = "pending"
	SaleStatusRemoved SaleStatus = "removed"
	SaleStatusExpired SaleStatus = "expired"
)

// Sale is a listed item available for purchase. A sale moves to sold only
// through a successful payment reconciliation and back to active only
// through a successful refund; listing CRUD lives outside this service.
type Sale struct {
	SaleID       uuid.UUID  `json:"sale_id"`
	StoreID      uuid.UUID  `json:"store_id"`
	SellerID     uuid.UUID  `json:"seller_id"`
	Title        string     `json:"title"`
	Price        float64    `json:"price"`
	ShippingCost float64    `json:"shipping_cost"`
	Status       SaleStatus `json:"status"`
	SoldAt       *time.Time `json:"sold_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Purchasable reports whether an intent may be issued against the sale.
func (s Sale) Purchasable() bool {
	return s.Status == SaleStatusActive
}

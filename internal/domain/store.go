package domain

import (
	"time"

	"github.com/google/uuid"
)

// Store aggregates a seller's listings. TotalSales is incremented exactly
// once per successfully reconciled payment and decremented never; refunds
// intentionally leave the counter untouched.
type Store struct {
	StoreID    uuid.UUID `json:"store_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	TotalSales int       `json:"total_sales"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

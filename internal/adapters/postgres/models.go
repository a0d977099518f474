package postgres

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/KB-design87/plundora-backend/internal/domain"
)

type storeModel struct {
	StoreID    uuid.UUID `gorm:"column:id;type:uuid;default:uuid_generate_v4();primaryKey"`
	OwnerID    uuid.UUID `gorm:"column:user_id"`
	StoreName  string    `gorm:"column:store_name"`
	TotalSales int       `gorm:"column:total_sales"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (storeModel) TableName() string { return "stores" }

type saleModel struct {
	SaleID       uuid.UUID  `gorm:"column:id;type:uuid;default:uuid_generate_v4();primaryKey"`
	StoreID      uuid.UUID  `gorm:"column:store_id"`
	SellerID     uuid.UUID  `gorm:"column:user_id"`
	Title        string     `gorm:"column:title"`
	Price        float64    `gorm:"column:price"`
	ShippingCost float64    `gorm:"column:shipping_cost"`
	Status       string     `gorm:"column:status"`
	SoldAt       *time.Time `gorm:"column:sold_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (saleModel) TableName() string { return "sales" }

type paymentModel struct {
	PaymentID       uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	SaleID          uuid.UUID      `gorm:"column:sale_id"`
	BuyerID         uuid.UUID      `gorm:"column:buyer_id"`
	SellerID        uuid.UUID      `gorm:"column:seller_id"`
	GatewayIntentID string         `gorm:"column:gateway_intent_id"`
	GatewayChargeID *string        `gorm:"column:gateway_charge_id"`
	Amount          float64        `gorm:"column:amount"`
	Currency        string         `gorm:"column:currency"`
	Status          string         `gorm:"column:status"`
	ShippingAddress datatypes.JSON `gorm:"column:shipping_address;type:jsonb"`
	BillingAddress  datatypes.JSON `gorm:"column:billing_address;type:jsonb"`
	Metadata        datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

func (paymentModel) TableName() string { return "payments" }

func toDomainSale(row saleModel) domain.Sale {
	return domain.Sale{
		SaleID:       row.SaleID,
		StoreID:      row.StoreID,
		SellerID:     row.SellerID,
		Title:        row.Title,
		Price:        row.Price,
		ShippingCost: row.ShippingCost,
		Status:       domain.SaleStatus(row.Status),
		SoldAt:       row.SoldAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toDomainStore(row storeModel) domain.Store {
	return domain.Store{
		StoreID:    row.StoreID,
		OwnerID:    row.OwnerID,
		Name:       row.StoreName,
		TotalSales: row.TotalSales,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func toPaymentModel(p domain.Payment) (paymentModel, error) {
	shipping, err := json.Marshal(p.ShippingAddress)
	if err != nil {
		return paymentModel{}, err
	}
	billing, err := json.Marshal(p.BillingAddress)
	if err != nil {
		return paymentModel{}, err
	}
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return paymentModel{}, err
	}
	var chargeID *string
	if p.GatewayChargeID != "" {
		chargeID = &p.GatewayChargeID
	}
	return paymentModel{
		PaymentID:       p.PaymentID,
		SaleID:          p.SaleID,
		BuyerID:         p.BuyerID,
		SellerID:        p.SellerID,
		GatewayIntentID: p.GatewayIntentID,
		GatewayChargeID: chargeID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          string(p.Status),
		ShippingAddress: datatypes.JSON(shipping),
		BillingAddress:  datatypes.JSON(billing),
		Metadata:        datatypes.JSON(metadata),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func toDomainPayment(row paymentModel) domain.Payment {
	p := domain.Payment{
		PaymentID:       row.PaymentID,
		SaleID:          row.SaleID,
		BuyerID:         row.BuyerID,
		SellerID:        row.SellerID,
		GatewayIntentID: row.GatewayIntentID,
		Amount:          row.Amount,
		Currency:        row.Currency,
		Status:          domain.PaymentStatus(row.Status),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.GatewayChargeID != nil {
		p.GatewayChargeID = *row.GatewayChargeID
	}
	if len(row.ShippingAddress) > 0 {
		_ = json.Unmarshal(row.ShippingAddress, &p.ShippingAddress)
	}
	if len(row.BillingAddress) > 0 {
		_ = json.Unmarshal(row.BillingAddress, &p.BillingAddress)
	}
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &p.Metadata)
	}
	return p
}

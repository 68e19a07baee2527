package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Item struct {
	BaseModel
	Name          string          `gorm:"not null;index"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Category      string          `gorm:"not null;index"`
	StockQuantity int             `gorm:"default:0;not null"`
	ImageURL      *string
	IsActive      bool      `gorm:"default:true"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null"`

	Creator User `gorm:"foreignKey:CreatedBy"`
}

type CartItem struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:ix_cart_items_user"`
	ItemID   uuid.UUID `gorm:"type:uuid;not null"`
	Quantity int       `gorm:"not null;default:1"`

	User User `gorm:"foreignKey:UserID"`
	Item Item `gorm:"foreignKey:ItemID"`
}

type Purchase struct {
	BaseModel
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index:ix_purchases_customer"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity       int             `gorm:"not null"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status         OrderStatus     `gorm:"type:varchar(16);default:'pending';not null;index"`
	TrackingNumber *string
	Notes          *string `gorm:"type:text"`

	Customer User `gorm:"foreignKey:CustomerID"`
	Item     Item `gorm:"foreignKey:ItemID"`
}

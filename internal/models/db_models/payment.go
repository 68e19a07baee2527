package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusProcessing        PaymentStatus = "processing"
	PaymentStatusSucceeded         PaymentStatus = "succeeded"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusCancelled         PaymentStatus = "cancelled"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "stripe"
	ProviderPayPal PaymentProvider = "paypal"
)

type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "pending"
	RefundStatusProcessing RefundStatus = "processing"
	RefundStatusSucceeded  RefundStatus = "succeeded"
	RefundStatusFailed     RefundStatus = "failed"
	RefundStatusCancelled  RefundStatus = "cancelled"
)

// Payment rows are the ledger: created once per intent attempt, mutated only
// through status transitions, never deleted.
type Payment struct {
	BaseModel
	PurchaseID uuid.UUID `gorm:"type:uuid;not null;index:ix_payments_purchase"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:ix_payments_user"`

	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency string          `gorm:"size:3;default:'usd';not null"`
	Status   PaymentStatus   `gorm:"type:varchar(24);default:'pending';not null;index"`
	Provider PaymentProvider `gorm:"type:varchar(16);not null;index"`

	// Stripe payment_intent id or PayPal order id
	ProviderPaymentID *string `gorm:"size:128;index:ix_payments_provider_payment_id"`
	// Stripe charge id or PayPal capture id, set only on success
	ProviderChargeID *string `gorm:"size:128"`

	PaymentMethod *string        `gorm:"size:64"`
	Metadata      datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	FailureCode    *string `gorm:"size:100"`
	FailureMessage *string `gorm:"type:text"`

	SucceededAt *int64
	FailedAt    *int64

	Purchase Purchase `gorm:"foreignKey:PurchaseID"`
	User     User     `gorm:"foreignKey:UserID"`
	Refunds  []Refund `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
}

type Refund struct {
	BaseModel
	PaymentID uuid.UUID `gorm:"type:uuid;not null;index:ix_refunds_payment"`

	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency string          `gorm:"size:3;default:'usd';not null"`
	Status   RefundStatus    `gorm:"type:varchar(16);default:'pending';not null;index"`
	Reason   *string         `gorm:"size:128"`

	ProviderRefundID *string `gorm:"size:128;index:ix_refunds_provider_refund_id"`

	Metadata   datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	AdminNotes *string        `gorm:"type:text"`

	FailureCode    *string `gorm:"size:100"`
	FailureMessage *string `gorm:"type:text"`

	SucceededAt *int64
	FailedAt    *int64

	InitiatedBy *uuid.UUID `gorm:"type:uuid"`

	Payment Payment `gorm:"foreignKey:PaymentID"`
}

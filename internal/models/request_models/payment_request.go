package request_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	PurchaseId    uuid.UUID `json:"purchase_id" binding:"required"`
	Provider      string    `json:"provider" binding:"required,oneof=stripe paypal"`
	PaymentMethod string    `json:"payment_method" binding:"omitempty,max=50"`
	Currency      string    `json:"currency" binding:"omitempty,len=3"`
}

type CreateRefundRequest struct {
	PaymentId  uuid.UUID        `json:"payment_id" binding:"required"`
	Amount     *decimal.Decimal `json:"amount"`
	Reason     string           `json:"reason" binding:"omitempty,max=500"`
	AdminNotes string           `json:"admin_notes" binding:"omitempty,max=1000"`
}

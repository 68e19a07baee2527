package request_models

import "github.com/shopspring/decimal"

type CreateItemRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Description   string          `json:"description" binding:"omitempty,max=2000"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	Category      string          `json:"category" binding:"required,max=100"`
	StockQuantity int             `json:"stock_quantity" binding:"gte=0"`
}

type UpdateItemRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	Price         *decimal.Decimal `json:"price"`
	Category      *string          `json:"category" binding:"omitempty,max=100"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,gte=0"`
}

package request_models

type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled"`
	TrackingNumber *string `json:"tracking_number" binding:"omitempty,max=100"`
	Notes          *string `json:"notes" binding:"omitempty,max=1000"`
}

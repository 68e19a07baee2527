package response_models

import "github.com/shopspring/decimal"

// PaymentIntentResponse carries whichever hand-off credential the provider
// issued: client_secret for card confirmation, approval_url for wallet
// redirect flows. Exactly one is set.
type PaymentIntentResponse struct {
	PaymentId         string          `json:"payment_id"`
	ProviderPaymentId string          `json:"provider_payment_id"`
	Provider          string          `json:"provider"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	ClientSecret      string          `json:"client_secret,omitempty"`
	ApprovalURL       string          `json:"approval_url,omitempty"`
}

type PaymentResponse struct {
	ID                string          `json:"id"`
	PurchaseId        string          `json:"purchase_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	Provider          string          `json:"provider"`
	ProviderPaymentId *string         `json:"provider_payment_id"`
	PaymentMethod     string          `json:"payment_method"`
	FailureCode       *string         `json:"failure_code,omitempty"`
	FailureMessage    *string         `json:"failure_message,omitempty"`
	SucceededAt       *int64          `json:"succeeded_at"`
	FailedAt          *int64          `json:"failed_at"`
	CreatedAt         int64           `json:"created_at"`
}

type PaymentDetailResponse struct {
	PaymentResponse
	RefundableAmount decimal.Decimal  `json:"refundable_amount"`
	Refunds          []RefundResponse `json:"refunds"`
}

type RefundResponse struct {
	ID               string          `json:"id"`
	PaymentId        string          `json:"payment_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	Reason           string          `json:"reason"`
	ProviderRefundId *string         `json:"provider_refund_id"`
	FailureCode      *string         `json:"failure_code,omitempty"`
	FailureMessage   *string         `json:"failure_message,omitempty"`
	SucceededAt      *int64          `json:"succeeded_at"`
	CreatedAt        int64           `json:"created_at"`
}

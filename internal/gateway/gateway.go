package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"shoply/internal/models/db_models"
	"shoply/pkg/utils"
)

type IntentRequest struct {
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	ReturnURL     string
	CancelURL     string
	Metadata      map[string]string
}

type IntentResult struct {
	ProviderPaymentID string
	// ClientSecret for providers confirmed client-side, ApprovalURL for
	// redirect-approval providers; exactly one is set.
	ClientSecret string
	ApprovalURL  string
	Status       db_models.PaymentStatus
}

type CaptureResult struct {
	Status           db_models.PaymentStatus
	ProviderChargeID string
}

type RefundRequest struct {
	ProviderPaymentID string
	ProviderChargeID  string
	Amount            decimal.Decimal
	Currency          string
	Reason            string
	Metadata          map[string]string
}

type RefundResult struct {
	ProviderRefundID string
	Status           db_models.RefundStatus
}

type EventKind string

const (
	EventPaymentSucceeded EventKind = "payment_succeeded"
	EventPaymentFailed    EventKind = "payment_failed"
	EventRefundSucceeded  EventKind = "refund_succeeded"
	EventRefundFailed     EventKind = "refund_failed"
	EventDispute          EventKind = "dispute"
	// EventIgnored marks event types the reconciler acknowledges without
	// touching the ledger.
	EventIgnored EventKind = "ignored"
)

// Event is a verified, provider-neutral webhook callback.
type Event struct {
	ID   string
	Type string
	Kind EventKind

	ProviderPaymentID string
	ProviderChargeID  string
	ProviderRefundID  string
	// PurchaseID carries the correlation id some providers embed in
	// metadata instead of a pre-registered intent reference.
	PurchaseID string

	FailureCode    string
	FailureMessage string
}

// Gateway is the contract every payment provider adapter satisfies.
type Gateway interface {
	Name() db_models.PaymentProvider
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
	CaptureOrConfirm(ctx context.Context, providerPaymentID string) (*CaptureResult, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	VerifyWebhook(ctx context.Context, body []byte, headers http.Header) (*Event, error)
}

// ProviderError carries the provider-supplied rejection reason. It wraps
// utils.ErrProviderRequest so callers classify it with errors.Is.
type ProviderError struct {
	Provider db_models.PaymentProvider
	Code     string
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return utils.ErrProviderRequest }

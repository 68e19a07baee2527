package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"shoply/internal/models/db_models"
	"shoply/pkg/utils"
)

type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	RequestTimeout time.Duration
}

type stripeGateway struct {
	cfg    StripeConfig
	sc     *client.API
	logger *zap.Logger
}

func NewStripeGateway(cfg StripeConfig, logger *zap.Logger) Gateway {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	sc := &client.API{}
	if cfg.SecretKey != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		})
		sc.Init(cfg.SecretKey, &stripe.Backends{API: backend, Uploads: backend, Connect: backend})
	}

	return &stripeGateway{cfg: cfg, sc: sc, logger: logger}
}

func (s *stripeGateway) Name() db_models.PaymentProvider { return db_models.ProviderStripe }

func (s *stripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	if s.cfg.SecretKey == "" {
		return nil, utils.ErrProviderUnavailable
	}

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(req.Amount.Shift(2).IntPart()),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := s.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, s.wrapErr(err)
	}

	return &IntentResult{
		ProviderPaymentID: intent.ID,
		ClientSecret:      intent.ClientSecret,
		Status:            s.mapIntentStatus(intent.Status),
	}, nil
}

// CaptureOrConfirm retrieves the intent: Stripe auto-captures on client-side
// confirmation, so this only reports the provider's current truth.
func (s *stripeGateway) CaptureOrConfirm(ctx context.Context, providerPaymentID string) (*CaptureResult, error) {
	if s.cfg.SecretKey == "" {
		return nil, utils.ErrProviderUnavailable
	}

	intent, err := s.sc.PaymentIntents.Get(providerPaymentID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, s.wrapErr(err)
	}

	res := &CaptureResult{Status: s.mapIntentStatus(intent.Status)}
	if intent.LatestCharge != nil {
		res.ProviderChargeID = intent.LatestCharge.ID
	}
	return res, nil
}

func (s *stripeGateway) CreateRefund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if s.cfg.SecretKey == "" {
		return nil, utils.ErrProviderUnavailable
	}

	params := &stripe.RefundParams{
		Params: stripe.Params{Context: ctx},
		Amount: stripe.Int64(req.Amount.Shift(2).IntPart()),
	}
	if req.ProviderChargeID != "" {
		params.Charge = stripe.String(req.ProviderChargeID)
	} else {
		params.PaymentIntent = stripe.String(req.ProviderPaymentID)
	}
	if req.Reason != "" {
		params.Reason = stripe.String(req.Reason)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	ref, err := s.sc.Refunds.New(params)
	if err != nil {
		return nil, s.wrapErr(err)
	}

	return &RefundResult{
		ProviderRefundID: ref.ID,
		Status:           s.mapRefundStatus(ref.Status),
	}, nil
}

func (s *stripeGateway) VerifyWebhook(ctx context.Context, body []byte, headers http.Header) (*Event, error) {
	if s.cfg.WebhookSecret == "" {
		return nil, utils.ErrProviderUnavailable
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		headers.Get("Stripe-Signature"),
		s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrSignatureInvalid, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type), Kind: EventIgnored}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
		var obj struct {
			ID           string `json:"id"`
			LatestCharge string `json:"latest_charge"`
			LastError    struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"last_payment_error"`
		}
		if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
			return nil, fmt.Errorf("parse payment_intent event: %w", err)
		}
		out.ProviderPaymentID = obj.ID
		out.ProviderChargeID = obj.LatestCharge
		if event.Type == stripe.EventTypePaymentIntentSucceeded {
			out.Kind = EventPaymentSucceeded
		} else {
			out.Kind = EventPaymentFailed
			out.FailureCode = obj.LastError.Code
			out.FailureMessage = obj.LastError.Message
		}

	case stripe.EventTypeChargeRefundUpdated, "refund.updated", "refund.failed":
		var obj struct {
			ID            string `json:"id"`
			Status        string `json:"status"`
			PaymentIntent string `json:"payment_intent"`
			Charge        string `json:"charge"`
			FailureReason string `json:"failure_reason"`
		}
		if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
			return nil, fmt.Errorf("parse refund event: %w", err)
		}
		out.ProviderRefundID = obj.ID
		out.ProviderPaymentID = obj.PaymentIntent
		out.ProviderChargeID = obj.Charge
		switch s.mapRefundStatus(stripe.RefundStatus(obj.Status)) {
		case db_models.RefundStatusSucceeded:
			out.Kind = EventRefundSucceeded
		case db_models.RefundStatusFailed, db_models.RefundStatusCancelled:
			out.Kind = EventRefundFailed
			out.FailureMessage = obj.FailureReason
		}

	case stripe.EventTypeChargeDisputeCreated:
		var obj struct {
			Charge string `json:"charge"`
		}
		if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
			return nil, fmt.Errorf("parse dispute event: %w", err)
		}
		out.Kind = EventDispute
		out.ProviderChargeID = obj.Charge
	}

	return out, nil
}

// mapIntentStatus is the exhaustive Stripe intent status table. Unmapped
// statuses land on failed and are logged as anomalies.
func (s *stripeGateway) mapIntentStatus(st stripe.PaymentIntentStatus) db_models.PaymentStatus {
	switch st {
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction:
		return db_models.PaymentStatusPending
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresCapture:
		return db_models.PaymentStatusProcessing
	case stripe.PaymentIntentStatusSucceeded:
		return db_models.PaymentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return db_models.PaymentStatusCancelled
	default:
		s.logger.Warn("unmapped stripe intent status", zap.String("status", string(st)))
		return db_models.PaymentStatusFailed
	}
}

func (s *stripeGateway) mapRefundStatus(st stripe.RefundStatus) db_models.RefundStatus {
	switch st {
	case stripe.RefundStatusPending:
		return db_models.RefundStatusPending
	case stripe.RefundStatusSucceeded:
		return db_models.RefundStatusSucceeded
	case stripe.RefundStatusFailed:
		return db_models.RefundStatusFailed
	case stripe.RefundStatusCanceled:
		return db_models.RefundStatusCancelled
	default:
		s.logger.Warn("unmapped stripe refund status", zap.String("status", string(st)))
		return db_models.RefundStatusFailed
	}
}

func (s *stripeGateway) wrapErr(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &ProviderError{
			Provider: db_models.ProviderStripe,
			Code:     string(se.Code),
			Message:  se.Msg,
		}
	}
	// network / timeout / misconfiguration: the local row stays pending
	return fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
}

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shoply/internal/models/db_models"
	"shoply/pkg/utils"
)

// paypalStub fakes the PayPal REST surface: oauth token, orders, captures,
// refunds and webhook verification.
type paypalStub struct {
	verificationStatus string
	orderStatus        string
	captureStatus      string
	refundStatus       string
	lastOrderBody      map[string]any
}

func (s *paypalStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&s.lastOrderBody)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "ORDER-1",
			"status": s.orderStatus,
			"links": []map[string]string{
				{"rel": "self", "href": "https://example.test/self"},
				{"rel": "approve", "href": "https://example.test/approve"},
			},
		})
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "ORDER-1",
			"status": s.captureStatus,
			"purchase_units": []map[string]any{{
				"payments": map[string]any{
					"captures": []map[string]string{{"id": "CAPTURE-1", "status": "COMPLETED"}},
				},
			}},
		})
	})
	mux.HandleFunc("/v2/payments/captures/CAPTURE-1/refund", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":     "REFUND-1",
			"status": s.refundStatus,
		})
	})
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"verification_status": s.verificationStatus,
		})
	})
	return mux
}

func newTestPayPalGateway(t *testing.T, stub *paypalStub) Gateway {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	return NewPayPalGateway(PayPalConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		BaseURL:      srv.URL,
		WebhookID:    "WH-1",
		ReturnURL:    "https://shop.test/return",
		CancelURL:    "https://shop.test/cancel",
	}, zap.NewNop())
}

func paypalWebhookHeaders() http.Header {
	h := http.Header{}
	h.Set("Paypal-Auth-Algo", "SHA256withRSA")
	h.Set("Paypal-Transmission-Id", "tx-1")
	h.Set("Paypal-Cert-Url", "https://api.paypal.com/cert")
	h.Set("Paypal-Transmission-Sig", "sig")
	h.Set("Paypal-Transmission-Time", "2024-01-01T00:00:00Z")
	return h
}

func TestPayPalCreateIntent(t *testing.T) {
	stub := &paypalStub{orderStatus: "CREATED"}
	g := newTestPayPalGateway(t, stub)

	res, err := g.CreateIntent(context.Background(), IntentRequest{
		Amount:   decimal.RequireFromString("49.99"),
		Currency: "usd",
		Metadata: map[string]string{"purchase_id": "purchase-uuid"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ORDER-1", res.ProviderPaymentID)
	assert.Equal(t, db_models.PaymentStatusPending, res.Status)
	assert.Equal(t, "https://example.test/approve", res.ApprovalURL)
	assert.Empty(t, res.ClientSecret)

	units := stub.lastOrderBody["purchase_units"].([]any)
	unit := units[0].(map[string]any)
	assert.Equal(t, "purchase-uuid", unit["custom_id"])
	amount := unit["amount"].(map[string]any)
	assert.Equal(t, "49.99", amount["value"])
	assert.Equal(t, "USD", amount["currency_code"])
}

func TestPayPalCaptureOrConfirm(t *testing.T) {
	stub := &paypalStub{captureStatus: "COMPLETED"}
	g := newTestPayPalGateway(t, stub)

	res, err := g.CaptureOrConfirm(context.Background(), "ORDER-1")
	require.NoError(t, err)

	assert.Equal(t, db_models.PaymentStatusSucceeded, res.Status)
	assert.Equal(t, "CAPTURE-1", res.ProviderChargeID)
}

func TestPayPalCreateRefund(t *testing.T) {
	stub := &paypalStub{refundStatus: "COMPLETED"}
	g := newTestPayPalGateway(t, stub)

	res, err := g.CreateRefund(context.Background(), RefundRequest{
		ProviderChargeID: "CAPTURE-1",
		Amount:           decimal.RequireFromString("10.00"),
		Currency:         "usd",
	})
	require.NoError(t, err)

	assert.Equal(t, "REFUND-1", res.ProviderRefundID)
	assert.Equal(t, db_models.RefundStatusSucceeded, res.Status)
}

func TestPayPalCreateRefundWithoutCapture(t *testing.T) {
	g := newTestPayPalGateway(t, &paypalStub{})

	_, err := g.CreateRefund(context.Background(), RefundRequest{
		ProviderPaymentID: "ORDER-1",
		Amount:            decimal.RequireFromString("10.00"),
		Currency:          "usd",
	})
	assert.ErrorIs(t, err, utils.ErrProviderRequest)
}

func TestPayPalVerifyWebhookCaptureCompleted(t *testing.T) {
	stub := &paypalStub{verificationStatus: "SUCCESS"}
	g := newTestPayPalGateway(t, stub)

	body := []byte(`{
		"id": "WH-EVT-1",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": {
			"id": "CAPTURE-1",
			"custom_id": "purchase-uuid",
			"supplementary_data": {"related_ids": {"order_id": "ORDER-1"}}
		}
	}`)

	event, err := g.VerifyWebhook(context.Background(), body, paypalWebhookHeaders())
	require.NoError(t, err)

	assert.Equal(t, EventPaymentSucceeded, event.Kind)
	assert.Equal(t, "CAPTURE-1", event.ProviderChargeID)
	assert.Equal(t, "ORDER-1", event.ProviderPaymentID)
	assert.Equal(t, "purchase-uuid", event.PurchaseID)
}

func TestPayPalVerifyWebhookCaptureDenied(t *testing.T) {
	stub := &paypalStub{verificationStatus: "SUCCESS"}
	g := newTestPayPalGateway(t, stub)

	body := []byte(`{
		"id": "WH-EVT-2",
		"event_type": "PAYMENT.CAPTURE.DENIED",
		"resource": {
			"id": "CAPTURE-2",
			"status_details": {"reason": "DECLINED_BY_RISK_FRAUD_FILTERS"}
		}
	}`)

	event, err := g.VerifyWebhook(context.Background(), body, paypalWebhookHeaders())
	require.NoError(t, err)

	assert.Equal(t, EventPaymentFailed, event.Kind)
	assert.Equal(t, "DECLINED_BY_RISK_FRAUD_FILTERS", event.FailureCode)
}

func TestPayPalVerifyWebhookMissingHeaders(t *testing.T) {
	g := newTestPayPalGateway(t, &paypalStub{verificationStatus: "SUCCESS"})

	headers := paypalWebhookHeaders()
	headers.Del("Paypal-Transmission-Sig")

	_, err := g.VerifyWebhook(context.Background(), []byte(`{}`), headers)
	assert.ErrorIs(t, err, utils.ErrSignatureInvalid)
}

func TestPayPalVerifyWebhookVerificationFailure(t *testing.T) {
	g := newTestPayPalGateway(t, &paypalStub{verificationStatus: "FAILURE"})

	_, err := g.VerifyWebhook(context.Background(), []byte(`{"id":"WH-EVT-3"}`), paypalWebhookHeaders())
	assert.ErrorIs(t, err, utils.ErrSignatureInvalid)
}

func TestPayPalMapOrderStatus(t *testing.T) {
	g := newTestPayPalGateway(t, &paypalStub{}).(*paypalGateway)

	cases := map[string]db_models.PaymentStatus{
		"CREATED":               db_models.PaymentStatusPending,
		"SAVED":                 db_models.PaymentStatusPending,
		"PAYER_ACTION_REQUIRED": db_models.PaymentStatusPending,
		"APPROVED":              db_models.PaymentStatusProcessing,
		"COMPLETED":             db_models.PaymentStatusSucceeded,
		"VOIDED":                db_models.PaymentStatusCancelled,
		"SOMETHING_ELSE":        db_models.PaymentStatusFailed,
	}
	for input, want := range cases {
		assert.Equal(t, want, g.mapOrderStatus(input), "status %q", input)
	}
}

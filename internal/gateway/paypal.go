package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"shoply/internal/models/db_models"
	"shoply/pkg/utils"
)

const (
	paypalSandboxURL = "https://api-m.sandbox.paypal.com"
	paypalLiveURL    = "https://api-m.paypal.com"
)

type PayPalConfig struct {
	ClientID       string
	ClientSecret   string
	Mode           string // "sandbox" or "live"
	BaseURL        string // overrides Mode when set; used by tests
	WebhookID      string
	ReturnURL      string
	CancelURL      string
	RequestTimeout time.Duration
}

type paypalGateway struct {
	cfg    PayPalConfig
	client *http.Client
	logger *zap.Logger

	mu             sync.Mutex
	accessToken    string
	tokenExpiresAt time.Time
}

func NewPayPalGateway(cfg PayPalConfig, logger *zap.Logger) Gateway {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.BaseURL == "" {
		if cfg.Mode == "live" {
			cfg.BaseURL = paypalLiveURL
		} else {
			cfg.BaseURL = paypalSandboxURL
		}
	}

	return &paypalGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

func (p *paypalGateway) Name() db_models.PaymentProvider { return db_models.ProviderPayPal }

// getAccessToken returns a cached OAuth token, refreshing when within a
// minute of expiry.
func (p *paypalGateway) getAccessToken(ctx context.Context) (string, error) {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return "", utils.ErrProviderUnavailable
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiresAt) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(p.cfg.ClientID + ":" + p.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", utils.ErrProviderUnavailable, resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}

	p.accessToken = token.AccessToken
	p.tokenExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn-60) * time.Second)
	return p.accessToken, nil
}

func (p *paypalGateway) doRequest(ctx context.Context, method, endpoint string, body any, out any) error {
	token, err := p.getAccessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var perr struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &perr)
		if perr.Message == "" {
			perr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &ProviderError{Provider: db_models.ProviderPayPal, Code: perr.Name, Message: perr.Message}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parse paypal response: %w", err)
		}
	}
	return nil
}

type paypalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
	PurchaseUnits []struct {
		CustomID string `json:"custom_id"`
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (p *paypalGateway) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = p.cfg.ReturnURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = p.cfg.CancelURL
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"amount": map[string]string{
				"currency_code": strings.ToUpper(req.Currency),
				"value":         req.Amount.StringFixed(2),
			},
			"custom_id": req.Metadata["purchase_id"],
		}},
		"application_context": map[string]string{
			"return_url": returnURL,
			"cancel_url": cancelURL,
		},
	}

	var order paypalOrder
	if err := p.doRequest(ctx, http.MethodPost, "/v2/checkout/orders", body, &order); err != nil {
		return nil, err
	}

	res := &IntentResult{
		ProviderPaymentID: order.ID,
		Status:            p.mapOrderStatus(order.Status),
	}
	for _, link := range order.Links {
		if link.Rel == "approve" {
			res.ApprovalURL = link.Href
			break
		}
	}
	return res, nil
}

// CaptureOrConfirm finalizes a buyer-approved order. PayPal's two-step flow
// requires this server-side capture before funds move.
func (p *paypalGateway) CaptureOrConfirm(ctx context.Context, providerPaymentID string) (*CaptureResult, error) {
	var order paypalOrder
	endpoint := fmt.Sprintf("/v2/checkout/orders/%s/capture", providerPaymentID)
	if err := p.doRequest(ctx, http.MethodPost, endpoint, struct{}{}, &order); err != nil {
		return nil, err
	}

	res := &CaptureResult{Status: p.mapOrderStatus(order.Status)}
	if len(order.PurchaseUnits) > 0 && len(order.PurchaseUnits[0].Payments.Captures) > 0 {
		res.ProviderChargeID = order.PurchaseUnits[0].Payments.Captures[0].ID
	}
	return res, nil
}

func (p *paypalGateway) CreateRefund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if req.ProviderChargeID == "" {
		return nil, &ProviderError{
			Provider: db_models.ProviderPayPal,
			Message:  "no capture reference available to refund",
		}
	}

	body := map[string]any{
		"amount": map[string]string{
			"currency_code": strings.ToUpper(req.Currency),
			"value":         req.Amount.StringFixed(2),
		},
	}
	if req.Reason != "" {
		body["note_to_payer"] = req.Reason
	}

	var refund struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	endpoint := fmt.Sprintf("/v2/payments/captures/%s/refund", req.ProviderChargeID)
	if err := p.doRequest(ctx, http.MethodPost, endpoint, body, &refund); err != nil {
		return nil, err
	}

	return &RefundResult{
		ProviderRefundID: refund.ID,
		Status:           p.mapRefundStatus(refund.Status),
	}, nil
}

var paypalSignatureHeaders = []string{
	"Paypal-Auth-Algo",
	"Paypal-Transmission-Id",
	"Paypal-Cert-Url",
	"Paypal-Transmission-Sig",
	"Paypal-Transmission-Time",
}

// VerifyWebhook requires the full signature header set and delegates the
// cryptographic check to PayPal's verification endpoint; event data is not
// trusted until verification_status comes back SUCCESS.
func (p *paypalGateway) VerifyWebhook(ctx context.Context, body []byte, headers http.Header) (*Event, error) {
	for _, h := range paypalSignatureHeaders {
		if headers.Get(h) == "" {
			return nil, fmt.Errorf("%w: missing %s header", utils.ErrSignatureInvalid, h)
		}
	}

	var event json.RawMessage = body
	verifyReq := map[string]any{
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        p.cfg.WebhookID,
		"webhook_event":     event,
	}

	var verifyResp struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := p.doRequest(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", verifyReq, &verifyResp); err != nil {
		return nil, err
	}
	if verifyResp.VerificationStatus != "SUCCESS" {
		return nil, fmt.Errorf("%w: verification status %s", utils.ErrSignatureInvalid, verifyResp.VerificationStatus)
	}

	var payload struct {
		ID        string `json:"id"`
		EventType string `json:"event_type"`
		Resource  struct {
			ID                string `json:"id"`
			CustomID          string `json:"custom_id"`
			Status            string `json:"status"`
			StatusDetails     struct {
				Reason string `json:"reason"`
			} `json:"status_details"`
			SupplementaryData struct {
				RelatedIDs struct {
					OrderID string `json:"order_id"`
				} `json:"related_ids"`
			} `json:"supplementary_data"`
		} `json:"resource"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse paypal event: %w", err)
	}

	out := &Event{
		ID:         payload.ID,
		Type:       payload.EventType,
		Kind:       EventIgnored,
		PurchaseID: payload.Resource.CustomID,
	}

	switch payload.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		out.Kind = EventPaymentSucceeded
		out.ProviderChargeID = payload.Resource.ID
		out.ProviderPaymentID = payload.Resource.SupplementaryData.RelatedIDs.OrderID
	case "PAYMENT.CAPTURE.DENIED":
		out.Kind = EventPaymentFailed
		out.ProviderChargeID = payload.Resource.ID
		out.ProviderPaymentID = payload.Resource.SupplementaryData.RelatedIDs.OrderID
		out.FailureMessage = "payment denied by paypal"
		if payload.Resource.StatusDetails.Reason != "" {
			out.FailureCode = payload.Resource.StatusDetails.Reason
		}
	case "PAYMENT.CAPTURE.REFUNDED":
		out.Kind = EventRefundSucceeded
		out.ProviderRefundID = payload.Resource.ID
	// PayPal publishes no refund-failure webhook for v2 captures; a
	// rejected refund surfaces synchronously on the refund call itself.
	case "CUSTOMER.DISPUTE.CREATED":
		out.Kind = EventDispute
	}

	return out, nil
}

// mapOrderStatus is the exhaustive PayPal order status table. Unmapped
// statuses land on failed and are logged as anomalies.
func (p *paypalGateway) mapOrderStatus(st string) db_models.PaymentStatus {
	switch st {
	case "CREATED", "SAVED", "PAYER_ACTION_REQUIRED":
		return db_models.PaymentStatusPending
	case "APPROVED":
		return db_models.PaymentStatusProcessing
	case "COMPLETED":
		return db_models.PaymentStatusSucceeded
	case "VOIDED":
		return db_models.PaymentStatusCancelled
	default:
		p.logger.Warn("unmapped paypal order status", zap.String("status", st))
		return db_models.PaymentStatusFailed
	}
}

func (p *paypalGateway) mapRefundStatus(st string) db_models.RefundStatus {
	switch st {
	case "PENDING":
		return db_models.RefundStatusPending
	case "COMPLETED":
		return db_models.RefundStatusSucceeded
	case "FAILED":
		return db_models.RefundStatusFailed
	case "CANCELLED":
		return db_models.RefundStatusCancelled
	default:
		p.logger.Warn("unmapped paypal refund status", zap.String("status", st))
		return db_models.RefundStatusFailed
	}
}

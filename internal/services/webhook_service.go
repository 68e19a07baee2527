package services

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"shoply/internal/gateway"
	"shoply/internal/models/db_models"
	"shoply/pkg/utils"
)

type WebhookServiceInterface interface {
	HandleWebhook(ctx context.Context, provider db_models.PaymentProvider, body []byte, headers http.Header) error
}

// WebhookService verifies provider callbacks and hands the resulting events
// to the payment service. Verification failures are the caller's fault and
// map to 4xx; ledger failures are ours and must surface as retryable so the
// provider redelivers.
type WebhookService struct {
	gateways   map[db_models.PaymentProvider]gateway.Gateway
	paymentSvc PaymentServiceInterface
	logger     *zap.Logger
}

func NewWebhookService(
	gateways []gateway.Gateway,
	paymentSvc PaymentServiceInterface,
	logger *zap.Logger,
) WebhookServiceInterface {
	byName := make(map[db_models.PaymentProvider]gateway.Gateway, len(gateways))
	for _, g := range gateways {
		byName[g.Name()] = g
	}
	return &WebhookService{
		gateways:   byName,
		paymentSvc: paymentSvc,
		logger:     logger,
	}
}

func (s *WebhookService) HandleWebhook(ctx context.Context, provider db_models.PaymentProvider, body []byte, headers http.Header) error {
	g, ok := s.gateways[provider]
	if !ok {
		return utils.ErrUnknownProvider
	}

	event, err := g.VerifyWebhook(ctx, body, headers)
	if err != nil {
		s.logger.Warn("webhook verification failed",
			zap.String("provider", string(provider)),
			zap.Error(err))
		return err
	}

	s.logger.Info("webhook received",
		zap.String("provider", string(provider)),
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("kind", string(event.Kind)))

	return s.paymentSvc.ApplyProviderEvent(ctx, provider, event)
}

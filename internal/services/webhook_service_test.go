package services_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shoply/internal/gateway"
	"shoply/internal/models/db_models"
	"shoply/internal/services"
	"shoply/pkg/utils"
)

type MockPaymentService struct {
	mock.Mock
	services.PaymentServiceInterface
}

func (m *MockPaymentService) ApplyProviderEvent(ctx context.Context, provider db_models.PaymentProvider, event *gateway.Event) error {
	args := m.Called(ctx, provider, event)
	return args.Error(0)
}

func newWebhookFixture() (*MockGateway, *MockPaymentService, services.WebhookServiceInterface) {
	stripeGateway := &MockGateway{name: db_models.ProviderStripe}
	paymentSvc := new(MockPaymentService)
	svc := services.NewWebhookService(
		[]gateway.Gateway{stripeGateway}, paymentSvc, zap.NewNop())
	return stripeGateway, paymentSvc, svc
}

func TestHandleWebhook(t *testing.T) {
	ctx := context.Background()
	body := []byte(`{"id":"evt_1"}`)
	headers := http.Header{}

	t.Run("verified event reaches the ledger", func(t *testing.T) {
		stripeGateway, paymentSvc, svc := newWebhookFixture()
		event := &gateway.Event{ID: "evt_1", Kind: gateway.EventPaymentSucceeded}

		stripeGateway.On("VerifyWebhook", ctx, body, headers).Return(event, nil)
		paymentSvc.On("ApplyProviderEvent", ctx, db_models.ProviderStripe, event).Return(nil)

		err := svc.HandleWebhook(ctx, db_models.ProviderStripe, body, headers)
		require.NoError(t, err)
		paymentSvc.AssertExpectations(t)
	})

	t.Run("signature failure is rejected without touching the ledger", func(t *testing.T) {
		stripeGateway, paymentSvc, svc := newWebhookFixture()
		stripeGateway.On("VerifyWebhook", ctx, body, headers).
			Return(nil, fmt.Errorf("%w: bad signature", utils.ErrSignatureInvalid))

		err := svc.HandleWebhook(ctx, db_models.ProviderStripe, body, headers)
		assert.ErrorIs(t, err, utils.ErrSignatureInvalid)
		paymentSvc.AssertNotCalled(t, "ApplyProviderEvent",
			mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ledger failure propagates so the provider retries", func(t *testing.T) {
		stripeGateway, paymentSvc, svc := newWebhookFixture()
		event := &gateway.Event{ID: "evt_1", Kind: gateway.EventPaymentSucceeded}

		stripeGateway.On("VerifyWebhook", ctx, body, headers).Return(event, nil)
		paymentSvc.On("ApplyProviderEvent", ctx, db_models.ProviderStripe, event).
			Return(utils.ErrDatabaseError)

		err := svc.HandleWebhook(ctx, db_models.ProviderStripe, body, headers)
		assert.ErrorIs(t, err, utils.ErrDatabaseError)
	})

	t.Run("unknown provider path", func(t *testing.T) {
		_, _, svc := newWebhookFixture()

		err := svc.HandleWebhook(ctx, db_models.ProviderPayPal, body, headers)
		assert.ErrorIs(t, err, utils.ErrUnknownProvider)
	})
}

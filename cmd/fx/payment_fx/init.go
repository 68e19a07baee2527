package payment_fx

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shoply/internal/gateway"
	"shoply/internal/repositories"
	"shoply/internal/services"
)

var Module = fx.Provide(
	providePaymentService, provideWebhookService, providePaymentRepo, provideGateways)

func providePaymentRepo(db *gorm.DB) repositories.PaymentRepositoryInterface {
	return repositories.NewPaymentRepository(db)
}

func provideGateways(logger *zap.Logger) []gateway.Gateway {
	stripeGateway := gateway.NewStripeGateway(gateway.StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}, logger)

	paypalGateway := gateway.NewPayPalGateway(gateway.PayPalConfig{
		ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		Mode:         os.Getenv("PAYPAL_MODE"),
		WebhookID:    os.Getenv("PAYPAL_WEBHOOK_ID"),
		ReturnURL:    os.Getenv("PAYPAL_RETURN_URL"),
		CancelURL:    os.Getenv("PAYPAL_CANCEL_URL"),
	}, logger)

	return []gateway.Gateway{stripeGateway, paypalGateway}
}

func providePaymentService(
	paymentRepo repositories.PaymentRepositoryInterface,
	purchaseRepo repositories.PurchaseRepositoryInterface,
	gateways []gateway.Gateway,
	notifier services.NotificationServiceInterface,
	logger *zap.Logger,
) services.PaymentServiceInterface {
	return services.NewPaymentService(paymentRepo, purchaseRepo, gateways, notifier, logger)
}

func provideWebhookService(
	gateways []gateway.Gateway,
	paymentSvc services.PaymentServiceInterface,
	logger *zap.Logger,
) services.WebhookServiceInterface {
	return services.NewWebhookService(gateways, paymentSvc, logger)
}

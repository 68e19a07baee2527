package controllers_fx

import (
	"go.uber.org/fx"

	"shoply/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewUserController),
	fx.Provide(controllers.NewItemController),
	fx.Provide(controllers.NewCartController),
	fx.Provide(controllers.NewOrderController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewWebhookController),
	fx.Provide(controllers.NewNotificationController))

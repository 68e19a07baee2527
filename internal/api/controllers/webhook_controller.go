package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shoply/internal/models/db_models"
	"shoply/internal/services"
	"shoply/pkg/utils"
)

type WebhookController struct {
	webhookService services.WebhookServiceInterface
}

func NewWebhookController(webhookService services.WebhookServiceInterface) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
	}
}

// StripeWebhook godoc
// @Summary Stripe event callback
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /payments/webhooks/stripe [post]
func (w *WebhookController) StripeWebhook(c *gin.Context) {
	w.handle(c, db_models.ProviderStripe)
}

// PayPalWebhook godoc
// @Summary PayPal event callback
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /payments/webhooks/paypal [post]
func (w *WebhookController) PayPalWebhook(c *gin.Context) {
	w.handle(c, db_models.ProviderPayPal)
}

// handle reads the raw body before any binding touches it: signature
// verification runs over the exact bytes the provider sent.
func (w *WebhookController) handle(c *gin.Context, provider db_models.PaymentProvider) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unreadable body")
		return
	}

	err = w.webhookService.HandleWebhook(c.Request.Context(), provider, body, c.Request.Header)
	if err != nil {
		// Ledger failures must return 5xx so the provider retries the
		// delivery. Everything else is a permanent rejection.
		if errors.Is(err, utils.ErrDatabaseError) {
			utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Event processed")
}

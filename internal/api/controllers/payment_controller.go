package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shoply/internal/models/db_models"
	"shoply/internal/models/request_models"
	"shoply/internal/repositories"
	"shoply/internal/services"
	"shoply/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentServiceInterface
}

func NewPaymentController(paymentService services.PaymentServiceInterface) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// CreatePayment godoc
// @Summary Create a payment intent for a purchase
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /payments/intent [post]
func (p *PaymentController) CreatePayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req request_models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	intent, err := p.paymentService.CreateIntent(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, intent, "Payment created")
}

// ConfirmPayment godoc
// @Summary Poll the provider for the current payment state
// @Tags Payments
// @Produce json
// @Param payment_id path string true "Payment id"
// @Success 200 {object} utils.APIResponse
// @Router /payments/confirm/{payment_id} [post]
func (p *PaymentController) ConfirmPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(c, "payment_id")
	if !ok {
		return
	}

	payment, err := p.paymentService.ConfirmPayment(c.Request.Context(), userID, paymentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, payment, "")
}

func (p *PaymentController) GetPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	payment, err := p.paymentService.GetPayment(c.Request.Context(), userID, isAdmin(c), paymentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, payment, "")
}

func (p *PaymentController) ListMyPayments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter, ok := paymentFilter(c)
	if !ok {
		return
	}

	payments, err := p.paymentService.ListMyPayments(c.Request.Context(), userID, filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, payments, "")
}

func (p *PaymentController) ListAllPayments(c *gin.Context) {
	filter, ok := paymentFilter(c)
	if !ok {
		return
	}

	payments, err := p.paymentService.ListAllPayments(c.Request.Context(), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, payments, "")
}

func (p *PaymentController) ListPurchasePayments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	purchaseID, ok := pathUUID(c, "purchase_id")
	if !ok {
		return
	}

	payments, err := p.paymentService.ListPaymentsForPurchase(c.Request.Context(), userID, isAdmin(c), purchaseID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, payments, "")
}

// CreateRefund godoc
// @Summary Refund a payment, fully or partially
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreateRefundRequest true "Refund payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /payments/refunds [post]
func (p *PaymentController) CreateRefund(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req request_models.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	refund, err := p.paymentService.CreateRefund(c.Request.Context(), adminID, req.PaymentId, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, refund, "Refund created")
}

func (p *PaymentController) GetRefund(c *gin.Context) {
	refundID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	refund, err := p.paymentService.GetRefund(c.Request.Context(), refundID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, refund, "")
}

func (p *PaymentController) ListRefunds(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := repositories.RefundFilter{Page: page, PageSize: pageSize}
	if raw := c.Query("status"); raw != "" {
		status := db_models.RefundStatus(raw)
		filter.Status = &status
	}
	from, ok := timeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := timeQuery(c, "to")
	if !ok {
		return
	}
	filter.From = from
	filter.To = to

	refunds, err := p.paymentService.ListRefunds(c.Request.Context(), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, refunds, "")
}

// Summary godoc
// @Summary Aggregate payment and refund totals
// @Tags Payments
// @Produce json
// @Param from query string false "Start date (RFC 3339)"
// @Param to query string false "End date (RFC 3339)"
// @Success 200 {object} utils.APIResponse
// @Router /payments/admin/summary [get]
func (p *PaymentController) Summary(c *gin.Context) {
	from, ok := timeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := timeQuery(c, "to")
	if !ok {
		return
	}

	summary, err := p.paymentService.Summary(c.Request.Context(), from, to)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, summary, "")
}

func paymentFilter(c *gin.Context) (repositories.PaymentFilter, bool) {
	page, pageSize := pageParams(c)
	filter := repositories.PaymentFilter{Page: page, PageSize: pageSize}
	if raw := c.Query("status"); raw != "" {
		status := db_models.PaymentStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("provider"); raw != "" {
		provider := db_models.PaymentProvider(raw)
		filter.Provider = &provider
	}
	from, ok := timeQuery(c, "from")
	if !ok {
		return filter, false
	}
	to, ok := timeQuery(c, "to")
	if !ok {
		return filter, false
	}
	filter.From = from
	filter.To = to
	return filter, true
}

func timeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid "+name+" parameter")
		return nil, false
	}
	return &t, true
}

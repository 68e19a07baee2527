package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shoply/internal/models/db_models"
	"shoply/internal/models/request_models"
	"shoply/internal/services"
	"shoply/pkg/utils"
)

type OrderController struct {
	purchaseService services.PurchaseServiceInterface
}

func NewOrderController(purchaseService services.PurchaseServiceInterface) *OrderController {
	return &OrderController{
		purchaseService: purchaseService,
	}
}

// Checkout godoc
// @Summary Convert the cart into orders
// @Tags Orders
// @Produce json
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /orders/checkout [post]
func (o *OrderController) Checkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	purchases, err := o.purchaseService.Checkout(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, purchases, "Order placed")
}

func (o *OrderController) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	purchase, err := o.purchaseService.GetPurchase(c.Request.Context(), userID, isAdmin(c), orderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, purchase, "")
}

func (o *OrderController) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)

	purchases, err := o.purchaseService.ListMyPurchases(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, purchases, "")
}

func (o *OrderController) ListAllOrders(c *gin.Context) {
	page, pageSize := pageParams(c)

	var status *db_models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := db_models.OrderStatus(raw)
		status = &s
	}

	purchases, err := o.purchaseService.ListAllPurchases(c.Request.Context(), status, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, purchases, "")
}

func (o *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req request_models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	purchase, err := o.purchaseService.UpdateStatus(c.Request.Context(), orderID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, purchase, "Order status updated")
}

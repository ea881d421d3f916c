// internal/handlers/order.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nexpoint/nexpoint-backend/internal/services"
	"github.com/nexpoint/nexpoint-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /orders
// The sole entry point into the submission workflow. The response is
// definitive: once the order number is returned, invoice and email are
// best-effort and never fail the order.
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	var req services.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	order, err := h.orderService.SubmitOrder(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidationFailed):
			utils.ErrorResponse(c, 400, "VALIDATION_FAILED", err.Error(), nil)
		case errors.Is(err, services.ErrPersistenceUnavailable):
			utils.ServiceUnavailableResponse(c, err.Error())
		case errors.Is(err, services.ErrCommitFailed):
			utils.ErrorResponse(c, 409, "COMMIT_FAILED", err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     "Order created successfully!",
		"orderNumber": order.OrderNumber,
	})
}

// GET /admin/orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c, 1000, 1000)

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), params.Limit, params.Offset())
	if err != nil {
		utils.ServiceUnavailableResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

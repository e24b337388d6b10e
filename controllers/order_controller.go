package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"order-service/apperrors"
	"order-service/middleware"
	"order-service/services"
)

type OrderController struct {
	orderService *services.OrderService
	logger       *zap.Logger
}

func NewOrderController(orderService *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, logger: logger}
}

// CreateOrder handles order creation requests.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, oc.logger, apperrors.Validation(bindingMessage(err)))
		return
	}

	result, err := oc.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"order_id":     result.OrderID,
		"order_number": result.OrderNumber,
		"razorpayOrder": gin.H{
			"id":       result.RazorpayOrder.ID,
			"amount":   float64(result.RazorpayOrder.Amount) / 100,
			"currency": result.RazorpayOrder.Currency,
		},
	})
}

// VerifyPayment handles the gateway payment callback.
func (oc *OrderController) VerifyPayment(c *gin.Context) {
	var req services.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, oc.logger, apperrors.Validation(bindingMessage(err)))
		return
	}

	order, err := oc.orderService.VerifyPayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment verified successfully",
		"order":   order,
	})
}

type adminOrderActionRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Action  string `json:"action" binding:"required"`
}

// AdminOrderAction advances an order along the status chain.
func (oc *OrderController) AdminOrderAction(c *gin.Context) {
	var req adminOrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, oc.logger, apperrors.Validation(bindingMessage(err)))
		return
	}

	status, err := oc.orderService.HandleAdminOrderAction(c.Request.Context(), req.OrderID, req.Action)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated to \"" + string(status) + "\"",
	})
}

// GetUserOrders returns the authenticated user's paid line items.
func (oc *OrderController) GetUserOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	page, limit := parsePaginationParams(c)

	result, err := oc.orderService.GetUserOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(result.Rows),
		"total":       result.Total,
		"currentPage": result.Page,
		"totalPages":  result.TotalPages,
		"data":        result.Rows,
	})
}

// GetAllOrders returns every paid order, flattened per line item.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	result, err := oc.orderService.ListAllOrders(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"totalOrders": result.Total,
		"currentPage": result.Page,
		"totalPages":  result.TotalPages,
		"data":        result.Rows,
	})
}

// GetOrderDetails returns one full order document.
func (oc *OrderController) GetOrderDetails(c *gin.Context) {
	order, err := oc.orderService.GetOrderDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order details fetched successfully",
		"data":    order,
	})
}

// GetOrderBill returns the invoice projection of an order.
func (oc *OrderController) GetOrderBill(c *gin.Context) {
	bill, err := oc.orderService.GenerateOrderBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order bill generated successfully",
		"bill":    bill,
	})
}

package routes

import (
	"github.com/gin-gonic/gin"

	"order-service/controllers"
	"order-service/middleware"
)

// RegisterRoutes registers all order service routes
func RegisterRoutes(
	r *gin.Engine,
	orderCtrl *controllers.OrderController,
	withdrawalCtrl *controllers.WithdrawalController,
	cancellationCtrl *controllers.CancellationController,
	returnCtrl *controllers.ReturnController,
) {
	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("", orderCtrl.CreateOrder)
		orders.POST("/verify-payment", orderCtrl.VerifyPayment)
		orders.GET("/my-orders", orderCtrl.GetUserOrders)
		orders.GET("/:id", orderCtrl.GetOrderDetails)
		orders.GET("/:id/bill", orderCtrl.GetOrderBill)

		// Cancellation and return entry point, per line item.
		orders.POST("/:id/items/:productId/withdraw", withdrawalCtrl.WithdrawItem)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.POST("/orders/action", orderCtrl.AdminOrderAction)

		admin.GET("/cancelled-orders", cancellationCtrl.List)
		admin.PATCH("/cancelled-orders/:id/process", cancellationCtrl.MarkProcessed)
		admin.PATCH("/cancelled-orders/:id/refund-status", cancellationCtrl.UpdateRefundStatus)

		admin.GET("/returned-orders", returnCtrl.List)
		admin.PATCH("/returned-orders/:id/inspect", returnCtrl.MarkInspected)
		admin.PATCH("/returned-orders/:id/refund-status", returnCtrl.UpdateRefundStatus)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/marketfold/marketplace-backend/services/order-service/controllers"
	"github.com/marketfold/marketplace-backend/services/order-service/middleware"
)

func SetupOrderRoutes(router *gin.Engine, oc *controllers.OrderController) {
	orders := router.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("/checkout", oc.PlaceOrder)
		orders.GET("", oc.GetUserOrders)
		orders.GET("/:orderId", oc.GetOrderDetails)
		orders.POST("/:orderId/cancel", oc.CancelOrder)
		orders.POST("/:orderId/return", oc.RequestReturn)
	}

	admin := router.Group("/admin/orders")
	{
		admin.GET("", oc.GetAllOrders)
		admin.PUT("/:orderId/status", oc.UpdateOrderStatus)
	}
}

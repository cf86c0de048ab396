package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/marketfold/marketplace-backend/services/order-service/middleware"
	"github.com/marketfold/marketplace-backend/services/payment-service/controllers"
)

func SetupPaymentRoutes(router *gin.Engine, pc *controllers.PaymentController) {
	payments := router.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	{
		payments.POST("", pc.ProcessPayment)
		payments.GET("/:paymentId", pc.GetPayment)
		payments.GET("/order/:orderId", pc.GetOrderPayments)
	}
}

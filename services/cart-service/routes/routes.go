package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/marketfold/marketplace-backend/services/cart-service/controllers"
)

func SetupCartRoutes(router *gin.Engine, cc *controllers.CartController) {
	cart := router.Group("/cart")
	{
		cart.GET("", cc.GetCart)
		cart.POST("/items", cc.AddItem)
		cart.PUT("/items/:productId", cc.UpdateItem)
		cart.DELETE("/items/:productId", cc.RemoveItem)
		cart.DELETE("", cc.ClearCart)
	}
}

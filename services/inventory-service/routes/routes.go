package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/marketfold/marketplace-backend/services/inventory-service/controllers"
)

func RegisterInventoryRoutes(r *gin.Engine, ic *controllers.InventoryController) {
	inv := r.Group("/inventory")
	{
		inv.GET("/:productId", ic.GetStock)
		inv.POST("/:productId/init", ic.InitStock)
		inv.POST("/:productId/add", ic.AddStock)
		inv.POST("/:productId/decrease", ic.DecreaseStock)
		inv.POST("/:productId/reserve", ic.Reserve)
		inv.POST("/:productId/release", ic.Release)
		inv.POST("/:productId/consume", ic.Consume)
	}
}

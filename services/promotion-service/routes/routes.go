package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/marketfold/marketplace-backend/services/promotion-service/controllers"
)

func SetupCouponRoutes(router *gin.Engine, cc *controllers.CouponController) {
	coupons := router.Group("/coupons")
	{
		coupons.POST("", cc.CreateCoupon)
		coupons.GET("", cc.ListCoupons)
		coupons.GET("/:couponId", cc.GetCoupon)
		coupons.DELETE("/:couponId", cc.DeactivateCoupon)
		coupons.POST("/validate", cc.ValidateCoupon)
	}
}

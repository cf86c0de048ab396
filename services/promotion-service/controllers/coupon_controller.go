package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	"github.com/marketfold/marketplace-backend/services/promotion-service/models"
	"github.com/marketfold/marketplace-backend/services/promotion-service/services"
)

type CouponController struct {
	service *services.CouponService
}

func NewCouponController(service *services.CouponService) *CouponController {
	return &CouponController{service: service}
}

func (cc *CouponController) CreateCoupon(c *gin.Context) {
	var req models.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid coupon payload", err))
		return
	}

	coupon, err := cc.service.CreateCoupon(c.Request.Context(), &req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (cc *CouponController) GetCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("couponId"))
	if err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid coupon ID", err))
		return
	}

	coupon, err := cc.service.GetCoupon(c.Request.Context(), id)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (cc *CouponController) ListCoupons(c *gin.Context) {
	var sellerID *uuid.UUID
	if raw := c.Query("sellerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apperrors.HandleError(c, apperrors.BadRequest("Invalid seller ID", err))
			return
		}
		sellerID = &id
	}

	coupons, err := cc.service.ListCoupons(c.Request.Context(), sellerID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons, "count": len(coupons)})
}

func (cc *CouponController) DeactivateCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("couponId"))
	if err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid coupon ID", err))
		return
	}

	if err := cc.service.DeactivateCoupon(c.Request.Context(), id); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coupon deactivated"})
}

func (cc *CouponController) ValidateCoupon(c *gin.Context) {
	var req models.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid validation payload", err))
		return
	}

	coupon, err := cc.service.ValidateForCheckout(c.Request.Context(), req.Code, req.UserID, req.Subtotal)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"coupon":           coupon,
		"discounted_total": coupon.DiscountedTotal(req.Subtotal),
	})
}

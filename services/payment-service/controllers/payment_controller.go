package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	"github.com/marketfold/marketplace-backend/services/order-service/middleware"
	"github.com/marketfold/marketplace-backend/services/payment-service/models"
	"github.com/marketfold/marketplace-backend/services/payment-service/services"
)

type PaymentController struct {
	service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

func (pc *PaymentController) ProcessPayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.HandleError(c, apperrors.Unauthorized("Unauthorized", err))
		return
	}

	var req models.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid payment payload", err))
		return
	}

	payment, err := pc.service.ProcessPayment(c.Request.Context(), userID, &req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	status := http.StatusCreated
	if payment.Status == models.PaymentStatusFailed {
		status = http.StatusPaymentRequired
	}
	c.JSON(status, payment)
}

func (pc *PaymentController) GetPayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.HandleError(c, apperrors.Unauthorized("Unauthorized", err))
		return
	}
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid payment ID", err))
		return
	}

	payment, err := pc.service.GetPayment(c.Request.Context(), paymentID, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (pc *PaymentController) GetOrderPayments(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.HandleError(c, apperrors.Unauthorized("Unauthorized", err))
		return
	}
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid order ID", err))
		return
	}

	payments, err := pc.service.GetOrderPayments(c.Request.Context(), orderID, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	"github.com/marketfold/marketplace-backend/services/order-service/middleware"
	"github.com/marketfold/marketplace-backend/services/order-service/models"
	"github.com/marketfold/marketplace-backend/services/order-service/services"
)

type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
}

func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService) *OrderController {
	return &OrderController{checkout: checkout, orders: orders}
}

func (oc *OrderController) PlaceOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.HandleError(c, apperrors.Unauthorized("Unauthorized", err))
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid checkout payload", err))
		return
	}

	result, err := oc.checkout.PlaceOrder(c.Request.Context(), userID, &req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (oc *OrderController) GetUserOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		apperrors.HandleError(c, apperrors.Unauthorized("Unauthorized", err))
		return
	}

	page, limit := pagination(c)
	orders, total, err := oc.orders.GetUserOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total, "page": page, "limit": limit})
}

func (oc *OrderController) GetOrderDetails(c *gin.Context) {
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

	order, err := oc.orders.GetOrderDetails(c.Request.Context(), orderID, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
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

	order, err := oc.orders.CancelOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) RequestReturn(c *gin.Context) {
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

	order, err := oc.orders.RequestReturn(c.Request.Context(), orderID, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetAllOrders is the admin listing.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	page, limit := pagination(c)
	orders, total, err := oc.orders.GetAllOrders(c.Request.Context(), page, limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total, "page": page, "limit": limit})
}

// UpdateOrderStatus is the admin transition endpoint.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid order ID", err))
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid status payload", err))
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Unknown order status", err))
		return
	}

	order, err := oc.orders.UpdateOrderStatus(c.Request.Context(), orderID, status)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

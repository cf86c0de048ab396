package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketfold/marketplace-backend/services/cart-service/database"
	"github.com/marketfold/marketplace-backend/services/cart-service/models"
	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
)

type CartController struct {
	repo database.CartStore
}

func NewCartController(repo database.CartStore) *CartController {
	return &CartController{repo: repo}
}

func userIDFromHeader(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return uuid.Nil, apperrors.Unauthorized("Missing X-User-ID header", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("Invalid X-User-ID header", err)
	}
	return id, nil
}

// loadCart fetches the user's cart, returning an empty cart when none exists.
func (cc *CartController) loadCart(c *gin.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := cc.repo.GetCart(c.Request.Context(), userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load cart", err)
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	return cart, nil
}

func (cc *CartController) GetCart(c *gin.Context) {
	userID, err := userIDFromHeader(c)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	cart, err := cc.loadCart(c, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) AddItem(c *gin.Context) {
	userID, err := userIDFromHeader(c)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid cart item payload", err))
		return
	}
	if req.PriceAtAdd.IsNegative() {
		apperrors.HandleError(c, apperrors.BadRequest("Price cannot be negative", nil))
		return
	}

	cart, err := cc.loadCart(c, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	cart.Upsert(models.CartItem{
		ProductID:  req.ProductID,
		SellerID:   req.SellerID,
		Quantity:   req.Quantity,
		PriceAtAdd: req.PriceAtAdd,
	})

	if err := cc.repo.SaveCart(c.Request.Context(), cart); err != nil {
		apperrors.HandleError(c, apperrors.Internal("Failed to save cart", err))
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	userID, err := userIDFromHeader(c)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid product ID", err))
		return
	}

	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid quantity payload", err))
		return
	}

	cart, err := cc.loadCart(c, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	if !cart.SetQuantity(productID, req.Quantity) {
		apperrors.HandleError(c, apperrors.NotFound("Product not in cart", nil))
		return
	}

	if err := cc.repo.SaveCart(c.Request.Context(), cart); err != nil {
		apperrors.HandleError(c, apperrors.Internal("Failed to save cart", err))
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, err := userIDFromHeader(c)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		apperrors.HandleError(c, apperrors.BadRequest("Invalid product ID", err))
		return
	}

	cart, err := cc.loadCart(c, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	if !cart.Remove(productID) {
		apperrors.HandleError(c, apperrors.NotFound("Product not in cart", nil))
		return
	}

	if err := cc.repo.SaveCart(c.Request.Context(), cart); err != nil {
		apperrors.HandleError(c, apperrors.Internal("Failed to save cart", err))
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	userID, err := userIDFromHeader(c)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	if err := cc.repo.DeleteCart(c.Request.Context(), userID); err != nil {
		apperrors.HandleError(c, apperrors.Internal("Failed to clear cart", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

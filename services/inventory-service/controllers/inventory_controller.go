package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	"github.com/marketfold/marketplace-backend/services/inventory-service/models"
	"github.com/marketfold/marketplace-backend/services/inventory-service/services"
)

type InventoryController struct {
	svc *services.InventoryService
}

func NewInventoryController(svc *services.InventoryService) *InventoryController {
	return &InventoryController{svc: svc}
}

func (ic *InventoryController) GetStock(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	resp, err := ic.svc.GetStock(c.Request.Context(), productID)
	if err != nil {
		c.JSON(apperrors.CodeOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ic *InventoryController) InitStock(c *gin.Context) {
	ic.respond(c, ic.svc.InitOrReset)
}

func (ic *InventoryController) AddStock(c *gin.Context) {
	ic.respond(c, ic.svc.AddStock)
}

func (ic *InventoryController) DecreaseStock(c *gin.Context) {
	ic.respond(c, ic.svc.DecreaseStock)
}

func (ic *InventoryController) Reserve(c *gin.Context) {
	ic.respondNoBody(c, ic.svc.Reserve)
}

func (ic *InventoryController) Release(c *gin.Context) {
	ic.respondNoBody(c, ic.svc.Release)
}

func (ic *InventoryController) Consume(c *gin.Context) {
	ic.respondNoBody(c, ic.svc.Consume)
}

func (ic *InventoryController) respond(c *gin.Context, op func(context.Context, uuid.UUID, int) (*models.InventoryResponse, error)) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	var req models.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resp, err := op(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		c.JSON(apperrors.CodeOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ic *InventoryController) respondNoBody(c *gin.Context, op func(context.Context, uuid.UUID, int) error) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	var req models.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := op(c.Request.Context(), productID, req.Quantity); err != nil {
		c.JSON(apperrors.CodeOf(err), gin.H{"error": err.Error()})
		return
	}

	resp, err := ic.svc.GetStock(c.Request.Context(), productID)
	if err != nil {
		c.JSON(apperrors.CodeOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseProductID(c *gin.Context) (uuid.UUID, bool) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return uuid.Nil, false
	}
	return productID, true
}

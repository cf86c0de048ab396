package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	"github.com/marketfold/marketplace-backend/services/inventory-service/models"
	"github.com/marketfold/marketplace-backend/services/inventory-service/repository"
)

// InventoryService exposes the stock ledger operations. All mutation goes
// through the repository's atomic conditional updates; this layer adds input
// validation, existence checks, and the error taxonomy.
type InventoryService struct {
	repo   repository.InventoryRepository
	logger *zap.Logger
}

func NewInventoryService(repo repository.InventoryRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{repo: repo, logger: logger}
}

// GetStock returns the current ledger row for a product.
func (s *InventoryService) GetStock(ctx context.Context, productID uuid.UUID) (*models.InventoryResponse, error) {
	inv, err := s.repo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("Inventory not found for product: %s", productID), nil)
		}
		return nil, apperrors.Internal("Failed to fetch inventory", err)
	}
	return mapToResponse(inv), nil
}

// InitOrReset creates the ledger row if absent, else resets quantity and
// zeroes the reserved counter.
func (s *InventoryService) InitOrReset(ctx context.Context, productID uuid.UUID, quantity int) (*models.InventoryResponse, error) {
	if quantity < 0 {
		return nil, apperrors.BadRequest("Initial quantity cannot be negative", nil)
	}

	if err := s.repo.InitOrReset(ctx, productID, quantity); err != nil {
		return nil, apperrors.Internal("Failed to initialize inventory", err)
	}

	s.logger.Info("Inventory initialized",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
	)
	return s.GetStock(ctx, productID)
}

// AddStock restocks a product. Also used to undo a consumed sale when a paid
// order is cancelled or returned.
func (s *InventoryService) AddStock(ctx context.Context, productID uuid.UUID, qty int) (*models.InventoryResponse, error) {
	if err := s.validateQty(qty); err != nil {
		return nil, err
	}

	if err := s.repo.AddStock(ctx, productID, qty); err != nil {
		return nil, s.mapRepoError(productID, "add stock", err)
	}

	s.logger.Info("Stock added", zap.String("product_id", productID.String()), zap.Int("quantity", qty))
	return s.GetStock(ctx, productID)
}

// DecreaseStock removes owned stock independent of reservations (manual or
// administrative correction).
func (s *InventoryService) DecreaseStock(ctx context.Context, productID uuid.UUID, qty int) (*models.InventoryResponse, error) {
	if err := s.validateQty(qty); err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.repo.DecreaseStock(ctx, productID, qty); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, apperrors.BadRequest("Not enough stock to decrease", nil)
		}
		return nil, s.mapRepoError(productID, "decrease stock", err)
	}

	s.logger.Info("Stock decreased", zap.String("product_id", productID.String()), zap.Int("quantity", qty))
	return s.GetStock(ctx, productID)
}

// Reserve earmarks available stock for an in-flight checkout.
func (s *InventoryService) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	if err := s.validateQty(qty); err != nil {
		return err
	}
	if err := s.ensureExists(ctx, productID); err != nil {
		return err
	}

	if err := s.repo.Reserve(ctx, productID, qty); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return apperrors.InsufficientStock(fmt.Sprintf("Not enough available stock for product %s", productID), nil)
		}
		return s.mapRepoError(productID, "reserve", err)
	}
	return nil
}

// Release returns earmarked stock after a failed or abandoned checkout.
func (s *InventoryService) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	if err := s.validateQty(qty); err != nil {
		return err
	}
	if err := s.ensureExists(ctx, productID); err != nil {
		return err
	}

	if err := s.repo.Release(ctx, productID, qty); err != nil {
		if errors.Is(err, repository.ErrInvalidState) {
			// reserved would go negative: a compensation bug, not a user error
			return apperrors.InvalidState(fmt.Sprintf("Release exceeds reserved stock for product %s", productID), nil)
		}
		return s.mapRepoError(productID, "release", err)
	}
	return nil
}

// Consume converts a reservation into a depleted sale on payment confirmation.
func (s *InventoryService) Consume(ctx context.Context, productID uuid.UUID, qty int) error {
	if err := s.validateQty(qty); err != nil {
		return err
	}
	if err := s.ensureExists(ctx, productID); err != nil {
		return err
	}

	if err := s.repo.Consume(ctx, productID, qty); err != nil {
		if errors.Is(err, repository.ErrInvalidState) {
			return apperrors.InvalidState(fmt.Sprintf("Consume exceeds reserved stock for product %s", productID), nil)
		}
		return s.mapRepoError(productID, "consume", err)
	}

	s.logger.Info("Reservation consumed", zap.String("product_id", productID.String()), zap.Int("quantity", qty))
	return nil
}

func (s *InventoryService) validateQty(qty int) error {
	if qty <= 0 {
		return apperrors.BadRequest("Quantity must be > 0", nil)
	}
	return nil
}

func (s *InventoryService) ensureExists(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(fmt.Sprintf("Inventory not found for product: %s", productID), nil)
		}
		return apperrors.Internal("Failed to fetch inventory", err)
	}
	return nil
}

func (s *InventoryService) mapRepoError(productID uuid.UUID, op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(fmt.Sprintf("Inventory not found for product: %s", productID), nil)
	}
	s.logger.Error("Inventory operation failed",
		zap.String("product_id", productID.String()),
		zap.String("op", op),
		zap.Error(err),
	)
	return apperrors.Internal(fmt.Sprintf("Failed to %s", op), err)
}

func mapToResponse(inv *models.Inventory) *models.InventoryResponse {
	return &models.InventoryResponse{
		ProductID: inv.ProductID,
		Quantity:  inv.Quantity,
		Reserved:  inv.Reserved,
		Available: inv.Available(),
	}
}

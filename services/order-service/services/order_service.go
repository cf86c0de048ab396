package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	"github.com/marketfold/marketplace-backend/services/order-service/models"
	"github.com/marketfold/marketplace-backend/services/order-service/repository"
)

// InventoryAdjuster applies the stock side effects of lifecycle transitions.
type InventoryAdjuster interface {
	StockReleaser
	Consume(ctx context.Context, productID uuid.UUID, quantity int) error
	AddStock(ctx context.Context, productID uuid.UUID, quantity int) error
}

// OrderService drives the order lifecycle after checkout.
type OrderService struct {
	repo      repository.OrderRepository
	inventory InventoryAdjuster
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(repo repository.OrderRepository, inventory InventoryAdjuster, publisher EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:      repo,
		inventory: inventory,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// GetUserOrders returns a page of the user's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	orders, total, err := s.repo.FindByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to fetch orders", err)
	}
	return orders, total, nil
}

// GetOrderDetails returns one order, enforcing ownership.
func (s *OrderService) GetOrderDetails(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.Unauthorized("Order belongs to another user", nil)
	}
	return order, nil
}

// GetAllOrders is the admin listing across all users.
func (s *OrderService) GetAllOrders(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	orders, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to fetch orders", err)
	}
	return orders, total, nil
}

// CancelOrder cancels the caller's own order via the lifecycle rules.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.Unauthorized("Order belongs to another user", nil)
	}
	return s.transition(ctx, order, models.StatusCancelled)
}

// returnWindow is how long after delivery a customer can request a return.
const returnWindow = 7 * 24 * time.Hour

// RequestReturn lets the customer return a delivered order. The order must
// belong to the caller, be DELIVERED, and still be inside the return window.
func (s *OrderService) RequestReturn(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.Unauthorized("Order belongs to another user", nil)
	}
	if order.Status != models.StatusDelivered {
		return nil, apperrors.BadRequest("Only delivered orders can be returned", nil)
	}
	if order.DeliveredAt != nil && s.now().After(order.DeliveredAt.Add(returnWindow)) {
		return nil, apperrors.BadRequest("Return window has expired", nil)
	}
	return s.transition(ctx, order, models.StatusReturned)
}

// UpdateOrderStatus is the admin operation for driving any valid transition.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, target models.Status) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, target)
}

// MarkPaid flips the payment status to PAID. A PLACED order is confirmed,
// consuming its reservations. An order confirmed ahead of payment keeps
// its status and only records the paid state.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil, apperrors.BadRequest("Order is already paid", nil)
	}

	switch order.Status {
	case models.StatusPlaced:
		order.PaymentStatus = models.PaymentPaid
		return s.transition(ctx, order, models.StatusConfirmed)
	case models.StatusConfirmed:
		order.PaymentStatus = models.PaymentPaid
		if err := s.repo.Save(ctx, order); err != nil {
			return nil, apperrors.Internal("Failed to update order", err)
		}
		s.publishEvent("order_status_changed", order)
		return order, nil
	default:
		return nil, apperrors.BadRequest("Order is not awaiting payment", nil)
	}
}

// MarkPaymentFailed records a failed payment attempt. The order stays
// PLACED and its reservations stay held for a retry.
func (s *OrderService) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil, apperrors.BadRequest("Order is already paid", nil)
	}

	order.PaymentStatus = models.PaymentFailed
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, apperrors.Internal("Failed to update order", err)
	}
	s.publishEvent("payment_failed", order)
	return order, nil
}

func (s *OrderService) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Order not found", err)
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch order", err)
	}
	return order, nil
}

// transition validates the move, applies its inventory effects, and saves.
func (s *OrderService) transition(ctx context.Context, order *models.Order, target models.Status) (*models.Order, error) {
	from := order.Status
	if !models.CanTransition(from, target) {
		return nil, apperrors.BadRequest("Invalid order status transition", nil)
	}

	if err := s.applyInventoryEffects(ctx, order, from, target); err != nil {
		return nil, err
	}

	order.Status = target
	now := s.now()
	switch target {
	case models.StatusCancelled:
		order.CanceledAt = &now
	case models.StatusDelivered:
		order.DeliveredAt = &now
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, apperrors.Internal("Failed to update order", err)
	}

	s.publishEvent("order_status_changed", order)
	s.logger.Info("order transitioned",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)))
	return order, nil
}

// applyInventoryEffects maps transitions to ledger operations:
// confirmation consumes the reservations, cancelling a PLACED order releases
// them, cancelling a CONFIRMED order restocks, and a return restocks.
func (s *OrderService) applyInventoryEffects(ctx context.Context, order *models.Order, from, to models.Status) error {
	var apply func(ctx context.Context, productID uuid.UUID, quantity int) error

	switch {
	case to == models.StatusConfirmed:
		apply = s.inventory.Consume
	case from == models.StatusPlaced && to == models.StatusCancelled:
		apply = s.inventory.Release
	case from != models.StatusPlaced && to == models.StatusCancelled:
		apply = s.inventory.AddStock
	case to == models.StatusReturned:
		apply = s.inventory.AddStock
	default:
		return nil
	}

	for _, item := range order.OrderItems {
		if err := apply(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("inventory effect failed",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.String("to", string(to)),
				zap.Error(err))
			return apperrors.Internal("Failed to adjust inventory", err)
		}
	}
	return nil
}

func (s *OrderService) publishEvent(eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := models.OrderEvent{
		EventType:  eventType,
		OrderID:    order.ID,
		CheckoutID: order.CheckoutID,
		UserID:     order.UserID,
		SellerID:   order.SellerID,
		Status:     order.Status,
		Total:      order.TotalAmount.StringFixed(2),
		Timestamp:  s.now(),
	}
	if err := s.publisher.PublishOrderEvent(event); err != nil {
		s.logger.Error("failed to publish order event",
			zap.String("order_id", order.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

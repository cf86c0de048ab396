package services

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cartmodels "github.com/marketfold/marketplace-backend/services/cart-service/models"
	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	"github.com/marketfold/marketplace-backend/services/order-service/models"
	"github.com/marketfold/marketplace-backend/services/order-service/repository"
	promomodels "github.com/marketfold/marketplace-backend/services/promotion-service/models"
)

// CartProvider gives checkout access to the user's cart.
type CartProvider interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*cartmodels.Cart, error)
	DeleteCart(ctx context.Context, userID uuid.UUID) error
}

// StockReserver reserves inventory for a cart line.
type StockReserver interface {
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) error
	StockReleaser
}

// StockReleaser undoes a reservation.
type StockReleaser interface {
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}

// CouponResolver resolves a coupon code for a user, checking existence,
// active flag, validity window, and prior usage. Minimum-amount and seller
// scoping are applied per sub-order by the checkout itself.
type CouponResolver interface {
	Resolve(ctx context.Context, code string, userID uuid.UUID) (*promomodels.Coupon, error)
}

// EventPublisher emits order events after a successful checkout. Publishing
// is best effort.
type EventPublisher interface {
	PublishOrderEvent(event models.OrderEvent) error
}

// CheckoutService turns a cart into orders: one per seller, stock reserved
// up front, everything persisted atomically, reservations released on any
// failure.
type CheckoutService struct {
	orders    repository.OrderRepository
	cart      CartProvider
	stock     StockReserver
	coupons   CouponResolver
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(
	orders repository.OrderRepository,
	cart CartProvider,
	stock StockReserver,
	coupons CouponResolver,
	publisher EventPublisher,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		cart:      cart,
		stock:     stock,
		coupons:   coupons,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceOrder runs the checkout saga for a user.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if err := validateShippingAddress(req.ShippingAddress); err != nil {
		return nil, err
	}

	cart, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load cart", err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, apperrors.BadRequest("Cart is empty", nil)
	}

	var coupon *promomodels.Coupon
	if req.CouponCode != "" {
		coupon, err = s.coupons.Resolve(ctx, req.CouponCode, userID)
		if err != nil {
			return nil, err
		}
	}

	groups := cart.ItemsBySeller()

	// Reserve every line before touching the order tables. The log undoes
	// partial progress if any line cannot be covered.
	comp := newCompensationLog(s.stock, s.logger)
	for _, group := range groups {
		for _, item := range group.Items {
			if err := s.stock.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
				comp.rollback(ctx)
				return nil, err
			}
			comp.record(item.ProductID, item.Quantity)
		}
	}

	checkoutID := uuid.New()
	orders, usage, err := s.buildOrders(checkoutID, userID, req.ShippingAddress, groups, coupon)
	if err != nil {
		comp.rollback(ctx)
		return nil, err
	}

	if err := s.orders.CreateCheckout(ctx, orders, usage); err != nil {
		comp.rollback(ctx)
		return nil, apperrors.Internal("Failed to persist orders", err)
	}

	// The orders are committed. Cart clearing and event publishing are best
	// effort from here on.
	if err := s.cart.DeleteCart(ctx, userID); err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
	s.publishPlacedEvents(orders)

	result := &models.CheckoutResponse{CheckoutID: checkoutID}
	for _, o := range orders {
		result.Orders = append(result.Orders, *o)
	}
	return result, nil
}

// buildOrders assembles one order per seller group and applies the coupon.
// A seller-scoped coupon discounts only its seller's sub-order. A global
// coupon discounts the first sub-order, in seller order, that meets the
// coupon minimum. In both cases the coupon must apply somewhere.
func (s *CheckoutService) buildOrders(checkoutID, userID uuid.UUID, address string, groups []cartmodels.SellerGroup, coupon *promomodels.Coupon) ([]*models.Order, *models.CouponUsageRecord, error) {
	now := s.now()
	applied := false
	var usage *models.CouponUsageRecord

	orders := make([]*models.Order, 0, len(groups))
	for i, group := range groups {
		order := &models.Order{
			ID:              uuid.New(),
			OrderNumber:     models.NewOrderNumber(now.Add(time.Duration(i)*time.Millisecond), group.SellerID),
			CheckoutID:      checkoutID,
			UserID:          userID,
			SellerID:        group.SellerID,
			Subtotal:        group.Subtotal.Round(2),
			TotalAmount:     group.Subtotal.Round(2),
			Status:          models.StatusPlaced,
			PaymentStatus:   models.PaymentPending,
			ShippingAddress: address,
		}
		for _, item := range group.Items {
			order.OrderItems = append(order.OrderItems, models.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.PriceAtAdd,
				LineTotal: item.LineTotal().Round(2),
			})
		}

		if coupon != nil && !applied && couponMatches(coupon, group) {
			order.TotalAmount = coupon.DiscountedTotal(group.Subtotal)
			order.CouponCode = coupon.Code
			usage = &models.CouponUsageRecord{
				UserID:   userID,
				CouponID: coupon.ID,
				OrderID:  order.ID,
			}
			applied = true
		}

		orders = append(orders, order)
	}

	if coupon != nil && !applied {
		if coupon.IsGlobal() {
			return nil, nil, apperrors.BadRequest("Order amount below coupon minimum", nil)
		}
		return nil, nil, apperrors.BadRequest("Coupon does not apply to any seller in the cart", nil)
	}
	return orders, usage, nil
}

func couponMatches(coupon *promomodels.Coupon, group cartmodels.SellerGroup) bool {
	if !coupon.MeetsMinimum(group.Subtotal) {
		return false
	}
	return coupon.IsGlobal() || coupon.AppliesTo(group.SellerID)
}

func (s *CheckoutService) publishPlacedEvents(orders []*models.Order) {
	if s.publisher == nil {
		return
	}
	for _, o := range orders {
		event := models.OrderEvent{
			EventType:  "order_placed",
			OrderID:    o.ID,
			CheckoutID: o.CheckoutID,
			UserID:     o.UserID,
			SellerID:   o.SellerID,
			Status:     o.Status,
			Total:      o.TotalAmount.StringFixed(2),
			Timestamp:  s.now(),
		}
		if err := s.publisher.PublishOrderEvent(event); err != nil {
			s.logger.Error("failed to publish order_placed event",
				zap.String("order_id", o.ID.String()), zap.Error(err))
		}
	}
}

// validateShippingAddress rejects blank, overlong, or letterless addresses.
func validateShippingAddress(address string) error {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return apperrors.BadRequest("Shipping address is required", nil)
	}
	if len(trimmed) > 255 {
		return apperrors.BadRequest("Shipping address too long", nil)
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			return nil
		}
	}
	return apperrors.BadRequest("Shipping address must contain letters", nil)
}

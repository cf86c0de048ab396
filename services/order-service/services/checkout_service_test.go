package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	cartmodels "github.com/marketfold/marketplace-backend/services/cart-service/models"
	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	"github.com/marketfold/marketplace-backend/services/order-service/models"
	"github.com/marketfold/marketplace-backend/services/order-service/repository"
	"github.com/marketfold/marketplace-backend/services/order-service/services"
	promomodels "github.com/marketfold/marketplace-backend/services/promotion-service/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- Mock order repository ---

type mockOrderRepo struct {
	orders     map[uuid.UUID]*models.Order
	usages     []models.CouponUsageRecord
	failCreate error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (m *mockOrderRepo) CreateCheckout(_ context.Context, orders []*models.Order, usage *models.CouponUsageRecord) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, o := range orders {
		copied := *o
		m.orders[o.ID] = &copied
	}
	if usage != nil {
		m.usages = append(m.usages, *usage)
	}
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockOrderRepo) FindByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]models.Order, int64, error) {
	var result []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockOrderRepo) FindAll(_ context.Context, _, _ int) ([]models.Order, int64, error) {
	var result []models.Order
	for _, o := range m.orders {
		result = append(result, *o)
	}
	return result, int64(len(result)), nil
}

func (m *mockOrderRepo) Save(_ context.Context, order *models.Order) error {
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

// --- Mock cart provider ---

type mockCart struct {
	cart    *cartmodels.Cart
	cleared bool
}

func (m *mockCart) GetCart(_ context.Context, _ uuid.UUID) (*cartmodels.Cart, error) {
	return m.cart, nil
}

func (m *mockCart) DeleteCart(_ context.Context, _ uuid.UUID) error {
	m.cleared = true
	return nil
}

// --- Mock stock reserver ---

type mockStock struct {
	reserved map[uuid.UUID]int // net reserved per product
	log      []string          // "reserve <id>" / "release <id>" in call order
	failOn   uuid.UUID         // product whose Reserve fails
}

func newMockStock() *mockStock {
	return &mockStock{reserved: make(map[uuid.UUID]int)}
}

func (m *mockStock) Reserve(_ context.Context, productID uuid.UUID, qty int) error {
	if productID == m.failOn {
		return apperrors.InsufficientStock("Insufficient stock", nil)
	}
	m.reserved[productID] += qty
	m.log = append(m.log, "reserve "+productID.String())
	return nil
}

func (m *mockStock) Release(_ context.Context, productID uuid.UUID, qty int) error {
	m.reserved[productID] -= qty
	m.log = append(m.log, "release "+productID.String())
	return nil
}

// --- Mock coupon resolver ---

type mockCoupons struct {
	coupon *promomodels.Coupon
	err    error
}

func (m *mockCoupons) Resolve(_ context.Context, _ string, _ uuid.UUID) (*promomodels.Coupon, error) {
	return m.coupon, m.err
}

// --- Mock publisher ---

type mockPublisher struct {
	events []models.OrderEvent
}

func (m *mockPublisher) PublishOrderEvent(event models.OrderEvent) error {
	m.events = append(m.events, event)
	return nil
}

// --- Helpers ---

func cartWith(userID uuid.UUID, items ...cartmodels.CartItem) *cartmodels.Cart {
	return &cartmodels.Cart{UserID: userID, Items: items}
}

func cartItem(sellerID uuid.UUID, qty int, price string) cartmodels.CartItem {
	return cartmodels.CartItem{
		ProductID:  uuid.New(),
		SellerID:   sellerID,
		Quantity:   qty,
		PriceAtAdd: dec(price),
	}
}

func globalCoupon(code, discountType, value, minOrder string) *promomodels.Coupon {
	return &promomodels.Coupon{
		ID:             uuid.New(),
		Code:           code,
		DiscountType:   promomodels.DiscountType(discountType),
		DiscountValue:  dec(value),
		MinOrderAmount: dec(minOrder),
		Active:         true,
	}
}

func sellerCoupon(code, discountType, value, minOrder string, sellerID uuid.UUID) *promomodels.Coupon {
	c := globalCoupon(code, discountType, value, minOrder)
	c.SellerID = &sellerID
	return c
}

type checkoutFixture struct {
	repo      *mockOrderRepo
	cart      *mockCart
	stock     *mockStock
	coupons   *mockCoupons
	publisher *mockPublisher
	svc       *services.CheckoutService
}

func newCheckoutFixture(cart *cartmodels.Cart, coupons *mockCoupons) *checkoutFixture {
	f := &checkoutFixture{
		repo:      newMockOrderRepo(),
		cart:      &mockCart{cart: cart},
		stock:     newMockStock(),
		coupons:   coupons,
		publisher: &mockPublisher{},
	}
	logger, _ := zap.NewDevelopment()
	f.svc = services.NewCheckoutService(f.repo, f.cart, f.stock, f.coupons, f.publisher, logger)
	return f
}

// --- Tests ---

func TestPlaceOrder_SingleSeller(t *testing.T) {
	userID := uuid.New()
	seller := uuid.New()
	cart := cartWith(userID, cartItem(seller, 2, "10.00"), cartItem(seller, 1, "5.00"))
	f := newCheckoutFixture(cart, &mockCoupons{})

	result, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{ShippingAddress: "12 Harbor Lane"})
	assert.NoError(t, err)
	assert.Len(t, result.Orders, 1)

	order := result.Orders[0]
	assert.Equal(t, models.StatusPlaced, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.True(t, dec("25.00").Equal(order.TotalAmount))
	assert.Len(t, order.OrderItems, 2)
	assert.True(t, f.cart.cleared)
	assert.Len(t, f.publisher.events, 1)
	assert.Equal(t, "order_placed", f.publisher.events[0].EventType)
}

func TestPlaceOrder_MultiSellerSplit(t *testing.T) {
	userID := uuid.New()
	sellerA := uuid.New()
	sellerB := uuid.New()
	cart := cartWith(userID,
		cartItem(sellerA, 1, "40.00"),
		cartItem(sellerB, 2, "15.00"),
		cartItem(sellerA, 1, "10.00"),
	)
	f := newCheckoutFixture(cart, &mockCoupons{})

	result, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{ShippingAddress: "12 Harbor Lane"})
	assert.NoError(t, err)
	assert.Len(t, result.Orders, 2)

	// Every order shares the checkout ID and has a unique order number.
	assert.Equal(t, result.CheckoutID, result.Orders[0].CheckoutID)
	assert.Equal(t, result.CheckoutID, result.Orders[1].CheckoutID)
	assert.NotEqual(t, result.Orders[0].OrderNumber, result.Orders[1].OrderNumber)

	totals := map[uuid.UUID]decimal.Decimal{}
	for _, o := range result.Orders {
		totals[o.SellerID] = o.TotalAmount
	}
	assert.True(t, dec("50.00").Equal(totals[sellerA]))
	assert.True(t, dec("30.00").Equal(totals[sellerB]))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	userID := uuid.New()
	f := newCheckoutFixture(cartWith(userID), &mockCoupons{})

	_, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{ShippingAddress: "12 Harbor Lane"})
	assert.Error(t, err)
	assert.Equal(t, 400, apperrors.CodeOf(err))
}

func TestPlaceOrder_InvalidAddress(t *testing.T) {
	userID := uuid.New()
	seller := uuid.New()
	cart := cartWith(userID, cartItem(seller, 1, "10.00"))

	for _, address := range []string{"", "   ", "12345 67890"} {
		f := newCheckoutFixture(cart, &mockCoupons{})
		_, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{ShippingAddress: address})
		assert.Error(t, err, "address %q", address)
		assert.Equal(t, 400, apperrors.CodeOf(err))
		assert.Empty(t, f.stock.log, "no reservations for address %q", address)
	}
}

func TestPlaceOrder_ReservationFailureRollsBack(t *testing.T) {
	userID := uuid.New()
	seller := uuid.New()
	items := []cartmodels.CartItem{
		cartItem(seller, 1, "10.00"),
		cartItem(seller, 2, "20.00"),
		cartItem(seller, 3, "30.00"),
	}
	cart := cartWith(userID, items...)
	f := newCheckoutFixture(cart, &mockCoupons{})
	f.stock.failOn = items[2].ProductID

	_, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{ShippingAddress: "12 Harbor Lane"})
	assert.Error(t, err)
	assert.Equal(t, 409, apperrors.CodeOf(err))

	// Both earlier reservations were released, in reverse order.
	for id, net := range f.stock.reserved {
		assert.Zero(t, net, "product %s still reserved", id)
	}
	assert.Len(t, f.stock.log, 4)
	assert.Equal(t, "release "+items[1].ProductID.String(), f.stock.log[2])
	assert.Equal(t, "release "+items[0].ProductID.String(), f.stock.log[3])

	assert.Empty(t, f.repo.orders)
	assert.False(t, f.cart.cleared)
}

func TestPlaceOrder_PersistFailureReleasesStock(t *testing.T) {
	userID := uuid.New()
	seller := uuid.New()
	cart := cartWith(userID, cartItem(seller, 2, "10.00"))
	f := newCheckoutFixture(cart, &mockCoupons{})
	f.repo.failCreate = errors.New("db down")

	_, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{ShippingAddress: "12 Harbor Lane"})
	assert.Error(t, err)
	assert.Equal(t, 500, apperrors.CodeOf(err))

	for _, net := range f.stock.reserved {
		assert.Zero(t, net)
	}
	assert.False(t, f.cart.cleared)
	assert.Empty(t, f.publisher.events)
}

func TestPlaceOrder_GlobalCouponAppliesOnce(t *testing.T) {
	userID := uuid.New()
	sellerA := uuid.New()
	sellerB := uuid.New()
	cart := cartWith(userID,
		cartItem(sellerA, 1, "100.00"),
		cartItem(sellerB, 1, "200.00"),
	)
	coupon := globalCoupon("SAVE10", "PERCENTAGE", "10", "0")
	f := newCheckoutFixture(cart, &mockCoupons{coupon: coupon})

	result, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{
		ShippingAddress: "12 Harbor Lane",
		CouponCode:      "SAVE10",
	})
	assert.NoError(t, err)
	assert.Len(t, result.Orders, 2)

	discounted := 0
	for _, o := range result.Orders {
		if o.CouponCode == "SAVE10" {
			discounted++
			assert.True(t, o.TotalAmount.LessThan(o.Subtotal))
		} else {
			assert.True(t, o.TotalAmount.Equal(o.Subtotal))
		}
	}
	assert.Equal(t, 1, discounted)
	assert.Len(t, f.repo.usages, 1)
	assert.Equal(t, coupon.ID, f.repo.usages[0].CouponID)
}

func TestPlaceOrder_SellerCouponTargetsMatchingOrder(t *testing.T) {
	userID := uuid.New()
	sellerA := uuid.New()
	sellerB := uuid.New()
	cart := cartWith(userID,
		cartItem(sellerA, 1, "100.00"),
		cartItem(sellerB, 1, "200.00"),
	)
	coupon := sellerCoupon("BRAND20", "FLAT", "20", "0", sellerB)
	f := newCheckoutFixture(cart, &mockCoupons{coupon: coupon})

	result, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{
		ShippingAddress: "12 Harbor Lane",
		CouponCode:      "BRAND20",
	})
	assert.NoError(t, err)

	for _, o := range result.Orders {
		if o.SellerID == sellerB {
			assert.True(t, dec("180.00").Equal(o.TotalAmount))
			assert.Equal(t, "BRAND20", o.CouponCode)
		} else {
			assert.True(t, dec("100.00").Equal(o.TotalAmount))
			assert.Empty(t, o.CouponCode)
		}
	}
}

func TestPlaceOrder_SellerCouponWithNoMatchingSeller(t *testing.T) {
	userID := uuid.New()
	cart := cartWith(userID, cartItem(uuid.New(), 1, "100.00"))
	coupon := sellerCoupon("BRAND20", "FLAT", "20", "0", uuid.New())
	f := newCheckoutFixture(cart, &mockCoupons{coupon: coupon})

	_, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{
		ShippingAddress: "12 Harbor Lane",
		CouponCode:      "BRAND20",
	})
	assert.Error(t, err)
	assert.Equal(t, 400, apperrors.CodeOf(err))

	// The failed checkout held nothing back.
	for _, net := range f.stock.reserved {
		assert.Zero(t, net)
	}
	assert.Empty(t, f.repo.orders)
}

func TestPlaceOrder_GlobalCouponSkipsSubMinimumOrders(t *testing.T) {
	userID := uuid.New()
	sellerA := uuid.New()
	sellerB := uuid.New()
	cart := cartWith(userID,
		cartItem(sellerA, 1, "30.00"),
		cartItem(sellerB, 1, "80.00"),
	)
	// Minimum of 50: only one sub-order qualifies, regardless of seller
	// ordering.
	coupon := globalCoupon("BIG50", "FLAT", "10", "50")
	f := newCheckoutFixture(cart, &mockCoupons{coupon: coupon})

	result, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{
		ShippingAddress: "12 Harbor Lane",
		CouponCode:      "BIG50",
	})
	assert.NoError(t, err)

	for _, o := range result.Orders {
		if o.SellerID == sellerB {
			assert.True(t, dec("70.00").Equal(o.TotalAmount))
		} else {
			assert.True(t, dec("30.00").Equal(o.TotalAmount))
		}
	}
}

func TestPlaceOrder_CouponRejectionReleasesNothing(t *testing.T) {
	userID := uuid.New()
	cart := cartWith(userID, cartItem(uuid.New(), 1, "100.00"))
	f := newCheckoutFixture(cart, &mockCoupons{err: apperrors.BadRequest("Coupon has already been used", nil)})

	_, err := f.svc.PlaceOrder(context.Background(), userID, &models.CheckoutRequest{
		ShippingAddress: "12 Harbor Lane",
		CouponCode:      "ONCE",
	})
	assert.Error(t, err)
	assert.Equal(t, 400, apperrors.CodeOf(err))
	assert.Empty(t, f.stock.log)
}

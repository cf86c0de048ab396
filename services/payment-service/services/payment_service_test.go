package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	ordermodels "github.com/marketfold/marketplace-backend/services/order-service/models"
	"github.com/marketfold/marketplace-backend/services/payment-service/gateway"
	"github.com/marketfold/marketplace-backend/services/payment-service/models"
	"github.com/marketfold/marketplace-backend/services/payment-service/repository"
	"github.com/marketfold/marketplace-backend/services/payment-service/services"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- Mock payment repository ---

type mockPaymentRepo struct {
	payments []models.Payment
}

func (m *mockPaymentRepo) Create(_ context.Context, p *models.Payment) error {
	m.payments = append(m.payments, *p)
	return nil
}

func (m *mockPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	for i := range m.payments {
		if m.payments[i].ID == id {
			return &m.payments[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockPaymentRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var result []models.Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPaymentRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var result []models.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

// --- Mock order control ---

type mockOrders struct {
	order       *ordermodels.Order
	paidCalls   int
	failedCalls int
	getErr      error
}

func (m *mockOrders) GetOrderDetails(_ context.Context, orderID, userID uuid.UUID) (*ordermodels.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.order == nil || m.order.ID != orderID {
		return nil, apperrors.NotFound("Order not found", nil)
	}
	if m.order.UserID != userID {
		return nil, apperrors.Unauthorized("Order belongs to another user", nil)
	}
	copied := *m.order
	return &copied, nil
}

func (m *mockOrders) MarkPaid(_ context.Context, _ uuid.UUID) (*ordermodels.Order, error) {
	m.paidCalls++
	m.order.PaymentStatus = ordermodels.PaymentPaid
	m.order.Status = ordermodels.StatusConfirmed
	return m.order, nil
}

func (m *mockOrders) MarkPaymentFailed(_ context.Context, _ uuid.UUID) (*ordermodels.Order, error) {
	m.failedCalls++
	m.order.PaymentStatus = ordermodels.PaymentFailed
	return m.order, nil
}

// --- Helpers ---

func placedOrder(userID uuid.UUID, total string) *ordermodels.Order {
	return &ordermodels.Order{
		ID:            uuid.New(),
		UserID:        userID,
		SellerID:      uuid.New(),
		Subtotal:      dec(total),
		TotalAmount:   dec(total),
		Status:        ordermodels.StatusPlaced,
		PaymentStatus: ordermodels.PaymentPending,
	}
}

func newPaymentService(repo *mockPaymentRepo, orders *mockOrders, gw gateway.Gateway) *services.PaymentService {
	logger, _ := zap.NewDevelopment()
	return services.NewPaymentService(repo, orders, gw, logger)
}

// --- Tests ---

func TestProcessPayment_Success(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrders{order: placedOrder(userID, "150.00")}
	repo := &mockPaymentRepo{}
	svc := newPaymentService(repo, orders, &gateway.DeterministicGateway{Accept: true})

	payment, err := svc.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: orders.order.ID,
		Amount:  dec("150.00"),
		Method:  "UPI",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
	assert.NotNil(t, payment.SucceededAt)
	assert.NotNil(t, payment.GatewayRef)
	assert.Contains(t, payment.TxnReference, "TXN-")
	assert.Contains(t, payment.CorrelationID, "PAY-")
	assert.Equal(t, 1, orders.paidCalls)
	assert.Zero(t, orders.failedCalls)
	assert.Len(t, repo.payments, 1)
}

func TestProcessPayment_DeclineLeavesOrderPlaced(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrders{order: placedOrder(userID, "150.00")}
	repo := &mockPaymentRepo{}
	svc := newPaymentService(repo, orders, &gateway.DeterministicGateway{Accept: false})

	payment, err := svc.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: orders.order.ID,
		Amount:  dec("150.00"),
		Method:  "CARD",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.NotNil(t, payment.FailedAt)
	assert.NotEmpty(t, payment.FailureReason)

	// The order keeps its reservations and can be retried.
	assert.Equal(t, ordermodels.StatusPlaced, orders.order.Status)
	assert.Equal(t, ordermodels.PaymentFailed, orders.order.PaymentStatus)
	assert.Equal(t, 1, orders.failedCalls)
	assert.Zero(t, orders.paidCalls)
	assert.Len(t, repo.payments, 1)
}

func TestProcessPayment_AmountMismatchMutatesNothing(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrders{order: placedOrder(userID, "150.00")}
	repo := &mockPaymentRepo{}
	svc := newPaymentService(repo, orders, &gateway.DeterministicGateway{Accept: true})

	_, err := svc.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: orders.order.ID,
		Amount:  dec("149.99"),
		Method:  "UPI",
	})
	assert.Error(t, err)
	assert.Equal(t, 400, apperrors.CodeOf(err))
	assert.Empty(t, repo.payments)
	assert.Zero(t, orders.paidCalls)
	assert.Zero(t, orders.failedCalls)
}

func TestProcessPayment_InvalidMethod(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrders{order: placedOrder(userID, "150.00")}
	svc := newPaymentService(&mockPaymentRepo{}, orders, &gateway.DeterministicGateway{Accept: true})

	_, err := svc.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: orders.order.ID,
		Amount:  dec("150.00"),
		Method:  "BARTER",
	})
	assert.Error(t, err)
	assert.Equal(t, 400, apperrors.CodeOf(err))
}

func TestProcessPayment_AlreadyPaid(t *testing.T) {
	userID := uuid.New()
	order := placedOrder(userID, "150.00")
	order.PaymentStatus = ordermodels.PaymentPaid
	order.Status = ordermodels.StatusConfirmed
	orders := &mockOrders{order: order}
	repo := &mockPaymentRepo{}
	svc := newPaymentService(repo, orders, &gateway.DeterministicGateway{Accept: true})

	_, err := svc.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: order.ID,
		Amount:  dec("150.00"),
		Method:  "UPI",
	})
	assert.Error(t, err)
	assert.Equal(t, 400, apperrors.CodeOf(err))
	assert.Empty(t, repo.payments)
}

func TestProcessPayment_WrongUser(t *testing.T) {
	orders := &mockOrders{order: placedOrder(uuid.New(), "150.00")}
	svc := newPaymentService(&mockPaymentRepo{}, orders, &gateway.DeterministicGateway{Accept: true})

	_, err := svc.ProcessPayment(context.Background(), uuid.New(), &models.ProcessPaymentRequest{
		OrderID: orders.order.ID,
		Amount:  dec("150.00"),
		Method:  "UPI",
	})
	assert.Error(t, err)
	assert.Equal(t, 401, apperrors.CodeOf(err))
}

func TestProcessPayment_CancelledOrder(t *testing.T) {
	userID := uuid.New()
	order := placedOrder(userID, "150.00")
	order.Status = ordermodels.StatusCancelled
	orders := &mockOrders{order: order}
	svc := newPaymentService(&mockPaymentRepo{}, orders, &gateway.DeterministicGateway{Accept: true})

	_, err := svc.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: order.ID,
		Amount:  dec("150.00"),
		Method:  "UPI",
	})
	assert.Error(t, err)
	assert.Equal(t, 400, apperrors.CodeOf(err))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, 0, orders.paidCalls)
}

func TestProcessPayment_ConfirmedUnpaidOrder(t *testing.T) {
	userID := uuid.New()
	order := placedOrder(userID, "150.00")
	order.Status = ordermodels.StatusConfirmed
	orders := &mockOrders{order: order}
	svc := newPaymentService(&mockPaymentRepo{}, orders, &gateway.DeterministicGateway{Accept: true})

	payment, err := svc.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: order.ID,
		Amount:  dec("150.00"),
		Method:  "UPI",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
	assert.Equal(t, 1, orders.paidCalls)
}

func TestProcessPayment_RetryAfterFailure(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrders{order: placedOrder(userID, "80.00")}
	repo := &mockPaymentRepo{}

	declining := newPaymentService(repo, orders, &gateway.DeterministicGateway{Accept: false})
	_, err := declining.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: orders.order.ID,
		Amount:  dec("80.00"),
		Method:  "WALLET",
	})
	assert.NoError(t, err)

	accepting := newPaymentService(repo, orders, &gateway.DeterministicGateway{Accept: true})
	payment, err := accepting.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: orders.order.ID,
		Amount:  dec("80.00"),
		Method:  "WALLET",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
	assert.Len(t, repo.payments, 2)
}

func TestGetPayment_EnforcesOwnership(t *testing.T) {
	userID := uuid.New()
	orders := &mockOrders{order: placedOrder(userID, "20.00")}
	repo := &mockPaymentRepo{}
	svc := newPaymentService(repo, orders, &gateway.DeterministicGateway{Accept: true})

	payment, err := svc.ProcessPayment(context.Background(), userID, &models.ProcessPaymentRequest{
		OrderID: orders.order.ID,
		Amount:  dec("20.00"),
		Method:  "COD",
	})
	assert.NoError(t, err)

	found, err := svc.GetPayment(context.Background(), payment.ID, userID)
	assert.NoError(t, err)
	assert.Equal(t, payment.ID, found.ID)

	_, err = svc.GetPayment(context.Background(), payment.ID, uuid.New())
	assert.Error(t, err)
	assert.Equal(t, 401, apperrors.CodeOf(err))
}

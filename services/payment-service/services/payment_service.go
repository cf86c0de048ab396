package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	ordermodels "github.com/marketfold/marketplace-backend/services/order-service/models"
	"github.com/marketfold/marketplace-backend/services/payment-service/gateway"
	"github.com/marketfold/marketplace-backend/services/payment-service/models"
	"github.com/marketfold/marketplace-backend/services/payment-service/repository"
)

// OrderControl is the slice of the order service the payment coordinator
// needs: ownership-checked reads plus the two payment outcomes.
type OrderControl interface {
	GetOrderDetails(ctx context.Context, orderID, userID uuid.UUID) (*ordermodels.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (*ordermodels.Order, error)
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) (*ordermodels.Order, error)
}

// PaymentService coordinates payment attempts: it validates everything
// before touching any state, charges the gateway, then records the attempt
// and updates the order to match the outcome.
type PaymentService struct {
	repo    repository.PaymentRepository
	orders  OrderControl
	gateway gateway.Gateway
	logger  *zap.Logger
	now     func() time.Time
}

func NewPaymentService(repo repository.PaymentRepository, orders OrderControl, gw gateway.Gateway, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		repo:    repo,
		orders:  orders,
		gateway: gw,
		logger:  logger,
		now:     time.Now,
	}
}

// ProcessPayment runs one payment attempt for an order.
func (s *PaymentService) ProcessPayment(ctx context.Context, userID uuid.UUID, req *models.ProcessPaymentRequest) (*models.Payment, error) {
	correlationID := models.NewCorrelationID()
	log := s.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("order_id", req.OrderID.String()))

	method := strings.ToUpper(req.Method)
	if !models.IsValidMethod(method) {
		return nil, apperrors.BadRequest("Unsupported payment method", nil)
	}
	if !req.Amount.IsPositive() {
		return nil, apperrors.BadRequest("Payment amount must be positive", nil)
	}

	order, err := s.orders.GetOrderDetails(ctx, req.OrderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == ordermodels.PaymentPaid {
		return nil, apperrors.BadRequest("Order is already paid", nil)
	}
	if order.Status != ordermodels.StatusPlaced && order.Status != ordermodels.StatusConfirmed {
		return nil, apperrors.BadRequest("Order is not awaiting payment", nil)
	}
	if !req.Amount.Equal(order.TotalAmount) {
		return nil, apperrors.BadRequest("Payment amount does not match order total", nil)
	}

	// All checks passed. From here every outcome leaves a payment row.
	result, err := s.gateway.Charge(ctx, req.Amount, method)
	if err != nil {
		log.Error("gateway unreachable", zap.Error(err))
		return nil, apperrors.Internal("Payment gateway unavailable", err)
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		OrderID:       order.ID,
		UserID:        userID,
		Amount:        req.Amount,
		Method:        method,
		TxnReference:  models.NewTxnReference(s.now()),
		CorrelationID: correlationID,
	}

	if result.Accepted {
		now := s.now()
		payment.Status = models.PaymentStatusSuccess
		payment.SucceededAt = &now
		if result.Ref != "" {
			payment.GatewayRef = &result.Ref
		}
	} else {
		now := s.now()
		payment.Status = models.PaymentStatusFailed
		payment.FailedAt = &now
		payment.FailureReason = result.Reason
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, apperrors.Internal("Failed to record payment", err)
	}

	if result.Accepted {
		if _, err := s.orders.MarkPaid(ctx, order.ID); err != nil {
			log.Error("payment captured but order update failed", zap.Error(err))
			return nil, apperrors.Internal("Payment recorded but order update failed", err)
		}
		log.Info("payment succeeded", zap.String("txn_reference", payment.TxnReference))
	} else {
		if _, err := s.orders.MarkPaymentFailed(ctx, order.ID); err != nil {
			log.Error("failed to mark payment failure on order", zap.Error(err))
			return nil, apperrors.Internal("Failed to record payment failure", err)
		}
		log.Warn("payment declined", zap.String("reason", result.Reason))
	}

	return payment, nil
}

// GetPayment fetches one payment attempt, enforcing ownership.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID, userID uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Payment not found", err)
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch payment", err)
	}
	if payment.UserID != userID {
		return nil, apperrors.Unauthorized("Payment belongs to another user", nil)
	}
	return payment, nil
}

// GetOrderPayments lists all attempts for one of the user's orders.
func (s *PaymentService) GetOrderPayments(ctx context.Context, orderID, userID uuid.UUID) ([]models.Payment, error) {
	if _, err := s.orders.GetOrderDetails(ctx, orderID, userID); err != nil {
		return nil, err
	}
	payments, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch payments", err)
	}
	return payments, nil
}

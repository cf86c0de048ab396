package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	aws_pkg "github.com/marketfold/marketplace-backend/pkg/aws"
	apperrors "github.com/marketfold/marketplace-backend/services/common/errors"
	"github.com/marketfold/marketplace-backend/services/promotion-service/models"
	"github.com/marketfold/marketplace-backend/services/promotion-service/repository"
)

// CouponService implements coupon administration and checkout-time
// validation.
type CouponService struct {
	repo        repository.CouponRepository
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
	now         func() time.Time
}

func NewCouponService(repo repository.CouponRepository, snsClient aws_pkg.SNSPublisher, snsTopicArn string, logger *zap.Logger) *CouponService {
	return &CouponService{
		repo:        repo,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateCoupon registers a new coupon after validating its shape.
func (s *CouponService) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, apperrors.BadRequest("Coupon code is required", nil)
	}
	if !req.ValidTo.After(req.ValidFrom) {
		return nil, apperrors.BadRequest("Coupon validity window is inverted", nil)
	}
	if req.DiscountValue.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.BadRequest("Discount value must be positive", nil)
	}
	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperrors.BadRequest("Percentage discount cannot exceed 100", nil)
	}
	if req.MinOrderAmount.IsNegative() {
		return nil, apperrors.BadRequest("Minimum order amount cannot be negative", nil)
	}

	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, apperrors.BadRequest("Coupon code already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check coupon code", err)
	}

	coupon := &models.Coupon{
		Code:           code,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		ValidFrom:      req.ValidFrom,
		ValidTo:        req.ValidTo,
		SellerID:       req.SellerID,
		Active:         true,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, apperrors.Internal("Failed to create coupon", err)
	}

	s.logger.Info("coupon created",
		zap.String("coupon_id", coupon.ID.String()),
		zap.String("code", coupon.Code))
	return coupon, nil
}

// GetCoupon fetches a coupon by ID.
func (s *CouponService) GetCoupon(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Coupon not found", err)
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch coupon", err)
	}
	return coupon, nil
}

// ListCoupons returns all coupons, or only a seller's when sellerID is set.
func (s *CouponService) ListCoupons(ctx context.Context, sellerID *uuid.UUID) ([]models.Coupon, error) {
	var (
		coupons []models.Coupon
		err     error
	)
	if sellerID != nil {
		coupons, err = s.repo.FindBySeller(ctx, *sellerID)
	} else {
		coupons, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to list coupons", err)
	}
	return coupons, nil
}

// DeactivateCoupon soft-disables a coupon. Existing usage records stay.
func (s *CouponService) DeactivateCoupon(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Deactivate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Coupon not found", err)
	}
	if err != nil {
		return apperrors.Internal("Failed to deactivate coupon", err)
	}
	s.logger.Info("coupon deactivated", zap.String("coupon_id", id.String()))
	return nil
}

// Resolve looks up a code and checks the amount-independent rules:
// existence, active flag, validity window, and prior usage by this user. It
// never mutates state; usage is recorded only when an order commits.
func (s *CouponService) Resolve(ctx context.Context, code string, userID uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Coupon not found", err)
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to look up coupon", err)
	}

	if !coupon.Active {
		return nil, apperrors.BadRequest("Coupon is not active", nil)
	}
	if !coupon.WithinWindow(s.now()) {
		return nil, apperrors.BadRequest("Coupon is outside its validity window", nil)
	}

	used, err := s.repo.IsUsedByUser(ctx, coupon.ID, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to check coupon usage", err)
	}
	if used {
		return nil, apperrors.BadRequest("Coupon has already been used", nil)
	}
	return coupon, nil
}

// ValidateForCheckout resolves a code and additionally checks the subtotal
// against the coupon minimum.
func (s *CouponService) ValidateForCheckout(ctx context.Context, code string, userID uuid.UUID, subtotal decimal.Decimal) (*models.Coupon, error) {
	coupon, err := s.Resolve(ctx, code, userID)
	if err != nil {
		return nil, err
	}

	if !coupon.MeetsMinimum(subtotal) {
		return nil, apperrors.BadRequest("Order amount below coupon minimum", nil)
	}

	s.publishCouponAppliedEvent(ctx, coupon, subtotal)
	return coupon, nil
}

// publishCouponAppliedEvent publishes a coupon_applied event to SNS.
// Publishing is best effort and never fails the validation.
func (s *CouponService) publishCouponAppliedEvent(ctx context.Context, coupon *models.Coupon, subtotal decimal.Decimal) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		return
	}

	event := models.CouponAppliedEvent{
		EventType:       "coupon_applied",
		CouponID:        coupon.ID.String(),
		CouponCode:      coupon.Code,
		DiscountType:    string(coupon.DiscountType),
		Subtotal:        subtotal,
		DiscountedTotal: coupon.DiscountedTotal(subtotal),
		Timestamp:       s.now(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal coupon_applied event", zap.Error(err))
		return
	}

	if err := s.snsClient.Publish(ctx, s.snsTopicArn, eventBytes); err != nil {
		s.logger.Error("Failed to publish coupon_applied event", zap.Error(err))
		return
	}

	s.logger.Info("Published coupon_applied event",
		zap.String("coupon_code", coupon.Code))
}

// RecordUsage marks a coupon as consumed by a user for a committed order.
func (s *CouponService) RecordUsage(ctx context.Context, couponID, userID, orderID uuid.UUID) error {
	usage := &models.CouponUsage{
		UserID:   userID,
		CouponID: couponID,
		OrderID:  orderID,
	}
	if err := s.repo.RecordUsage(ctx, usage); err != nil {
		return apperrors.Internal("Failed to record coupon usage", err)
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType represents how a coupon's value is interpreted.
type DiscountType string

const (
	DiscountTypeFlat       DiscountType = "FLAT"
	DiscountTypePercentage DiscountType = "PERCENTAGE"
)

// Coupon is a promotional discount. SellerID nil means the coupon is global:
// usable against any seller's sub-order, but at most once per checkout.
// Coupons are soft-deactivated, never hard-deleted, so usage history stays
// attributable.
type Coupon struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code           string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	DiscountType   DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount_value"`
	MinOrderAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"min_order_amount"`
	ValidFrom      time.Time       `gorm:"not null" json:"valid_from"`
	ValidTo        time.Time       `gorm:"not null" json:"valid_to"`
	SellerID       *uuid.UUID      `gorm:"type:uuid;index" json:"seller_id,omitempty"`
	Active         bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// CouponUsage is an append-only record: once a row exists for (UserID,
// CouponID) the coupon is unusable again by that user, regardless of how the
// order turned out.
type CouponUsage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_usage_user_coupon" json:"user_id"`
	CouponID  uuid.UUID `gorm:"type:uuid;not null;index:idx_usage_user_coupon" json:"coupon_id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null" json:"order_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsGlobal reports whether the coupon applies to any seller.
func (c *Coupon) IsGlobal() bool {
	return c.SellerID == nil
}

// AppliesTo reports whether a seller-scoped coupon matches the given seller.
func (c *Coupon) AppliesTo(sellerID uuid.UUID) bool {
	return c.SellerID != nil && *c.SellerID == sellerID
}

// WithinWindow reports whether the instant falls inside the validity window.
// Both bounds are calendar dates, inclusive: a coupon stays valid through
// the whole of its ValidTo day regardless of the stored time of day.
func (c *Coupon) WithinWindow(at time.Time) bool {
	day := truncateToDay(at)
	return !day.Before(truncateToDay(c.ValidFrom)) && !day.After(truncateToDay(c.ValidTo))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MeetsMinimum reports whether a sub-order subtotal qualifies for the coupon.
func (c *Coupon) MeetsMinimum(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(c.MinOrderAmount)
}

// DiscountedTotal prices a subtotal against the coupon: FLAT subtracts the
// value, PERCENTAGE subtracts subtotal*value/100. The result is rounded
// half-up to 2 decimal places and never negative.
func (c *Coupon) DiscountedTotal(subtotal decimal.Decimal) decimal.Decimal {
	var result decimal.Decimal
	switch c.DiscountType {
	case DiscountTypeFlat:
		result = subtotal.Sub(c.DiscountValue)
	case DiscountTypePercentage:
		discount := subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		result = subtotal.Sub(discount)
	default:
		result = subtotal
	}

	result = result.Round(2)
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}

// CouponAppliedEvent is published to SNS when a coupon passes checkout
// validation.
type CouponAppliedEvent struct {
	EventType       string          `json:"event_type"`
	CouponID        string          `json:"coupon_id"`
	CouponCode      string          `json:"coupon_code"`
	DiscountType    string          `json:"discount_type"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
	Timestamp       time.Time       `json:"timestamp"`
}

// CreateCouponRequest is the payload for creating a new coupon.
type CreateCouponRequest struct {
	Code           string          `json:"code" binding:"required,min=3,max=64"`
	DiscountType   DiscountType    `json:"discount_type" binding:"required,oneof=FLAT PERCENTAGE"`
	DiscountValue  decimal.Decimal `json:"discount_value" binding:"required"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	ValidFrom      time.Time       `json:"valid_from" binding:"required"`
	ValidTo        time.Time       `json:"valid_to" binding:"required"`
	SellerID       *uuid.UUID      `json:"seller_id,omitempty"`
}

// ValidateCouponRequest is the payload for validating a coupon against a
// checkout subtotal.
type ValidateCouponRequest struct {
	Code     string          `json:"code" binding:"required"`
	UserID   uuid.UUID       `json:"user_id" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal" binding:"required"`
}

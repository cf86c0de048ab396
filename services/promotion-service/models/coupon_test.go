package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDiscountedTotal_Flat(t *testing.T) {
	c := &Coupon{DiscountType: DiscountTypeFlat, DiscountValue: dec("50")}

	assert.True(t, dec("150.00").Equal(c.DiscountedTotal(dec("200"))))
}

func TestDiscountedTotal_FlatNeverNegative(t *testing.T) {
	c := &Coupon{DiscountType: DiscountTypeFlat, DiscountValue: dec("50")}

	assert.True(t, decimal.Zero.Equal(c.DiscountedTotal(dec("30"))))
}

func TestDiscountedTotal_PercentageRoundsHalfUp(t *testing.T) {
	// 10% off 100.05 leaves 90.045, which rounds to 90.05.
	c := &Coupon{DiscountType: DiscountTypePercentage, DiscountValue: dec("10")}

	assert.True(t, dec("90.05").Equal(c.DiscountedTotal(dec("100.05"))))
}

func TestDiscountedTotal_PercentageFull(t *testing.T) {
	c := &Coupon{DiscountType: DiscountTypePercentage, DiscountValue: dec("100")}

	assert.True(t, decimal.Zero.Equal(c.DiscountedTotal(dec("79.99"))))
}

func TestCouponScope(t *testing.T) {
	sellerID := uuid.New()
	global := &Coupon{}
	scoped := &Coupon{SellerID: &sellerID}

	assert.True(t, global.IsGlobal())
	assert.False(t, scoped.IsGlobal())
	assert.True(t, scoped.AppliesTo(sellerID))
	assert.False(t, scoped.AppliesTo(uuid.New()))
	assert.False(t, global.AppliesTo(sellerID))
}

func TestWithinWindow_DateInclusive(t *testing.T) {
	loc := time.UTC
	c := &Coupon{
		ValidFrom: time.Date(2026, time.March, 10, 0, 0, 0, 0, loc),
		ValidTo:   time.Date(2026, time.March, 20, 0, 0, 0, 0, loc),
	}

	assert.True(t, c.WithinWindow(time.Date(2026, time.March, 10, 0, 0, 0, 0, loc)))
	// Late on the validTo day is still inside the window.
	assert.True(t, c.WithinWindow(time.Date(2026, time.March, 20, 23, 59, 0, 0, loc)))
	assert.False(t, c.WithinWindow(time.Date(2026, time.March, 9, 23, 59, 0, 0, loc)))
	assert.False(t, c.WithinWindow(time.Date(2026, time.March, 21, 0, 1, 0, 0, loc)))
}

func TestMeetsMinimum(t *testing.T) {
	c := &Coupon{MinOrderAmount: dec("100")}

	assert.True(t, c.MeetsMinimum(dec("100")))
	assert.True(t, c.MeetsMinimum(dec("100.01")))
	assert.False(t, c.MeetsMinimum(dec("99.99")))
}

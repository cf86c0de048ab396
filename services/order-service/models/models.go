package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is one seller's slice of a checkout. A multi-seller cart produces
// one Order per seller, all sharing a CheckoutID.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	CheckoutID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"checkout_id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	SellerID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	CouponCode      string          `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	Status          Status          `gorm:"type:varchar(20);not null;default:'PLACED'" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING'" json:"payment_status"`
	ShippingAddress string          `gorm:"type:varchar(255);not null" json:"shipping_address"`
	CanceledAt      *time.Time      `json:"canceled_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

// NewOrderNumber builds a human-readable order number from the creation time
// and the first segment of the seller UUID.
func NewOrderNumber(at time.Time, sellerID uuid.UUID) string {
	fragment := sellerID.String()[:8]
	return fmt.Sprintf("ORD-%d-%s", at.UnixMilli(), fragment)
}

// CouponUsageRecord marks a coupon as consumed by a user, written in the
// same transaction that persists the orders.
type CouponUsageRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_order_usage_user_coupon" json:"user_id"`
	CouponID  uuid.UUID `gorm:"type:uuid;not null;index:idx_order_usage_user_coupon" json:"coupon_id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null" json:"order_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CouponUsageRecord) TableName() string { return "coupon_usages" }

// CheckoutRequest is the payload for placing an order from the cart.
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
	CouponCode      string `json:"coupon_code"`
}

// UpdateStatusRequest is the admin payload for driving the lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CheckoutResponse reports the orders created by one checkout.
type CheckoutResponse struct {
	CheckoutID uuid.UUID `json:"checkout_id"`
	Orders     []Order   `json:"orders"`
}

// OrderEvent is published to Kafka on order lifecycle changes.
type OrderEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    uuid.UUID `json:"order_id"`
	CheckoutID uuid.UUID `json:"checkout_id"`
	UserID     uuid.UUID `json:"user_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	Status     Status    `json:"status"`
	Total      string    `json:"total"`
	Timestamp  time.Time `json:"timestamp"`
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus is the outcome of one payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Supported payment methods. Anything else is rejected before the order is
// even looked at.
const (
	MethodUPI        = "UPI"
	MethodCard       = "CARD"
	MethodNetBanking = "NET_BANKING"
	MethodWallet     = "WALLET"
	MethodCOD        = "COD"
)

var validMethods = map[string]bool{
	MethodUPI:        true,
	MethodCard:       true,
	MethodNetBanking: true,
	MethodWallet:     true,
	MethodCOD:        true,
}

// IsValidMethod reports whether the method is in the supported whitelist.
func IsValidMethod(method string) bool {
	return validMethods[strings.ToUpper(method)]
}

// Payment is one attempt to pay an order. Every attempt, failed or not, gets
// a row; an order can accumulate several failed attempts before a success.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method        string          `gorm:"type:varchar(20);not null" json:"method"`
	Status        PaymentStatus   `gorm:"type:varchar(20);not null" json:"status"`
	TxnReference  string          `gorm:"type:varchar(64);uniqueIndex" json:"txn_reference"`
	CorrelationID string          `gorm:"type:varchar(20);index" json:"correlation_id"`
	GatewayRef    *string         `gorm:"type:varchar(255)" json:"gateway_ref,omitempty"`
	FailureReason string          `gorm:"type:varchar(255)" json:"failure_reason,omitempty"`
	SucceededAt   *time.Time      `json:"succeeded_at,omitempty"`
	FailedAt      *time.Time      `json:"failed_at,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// NewTxnReference builds a transaction reference from the attempt time.
func NewTxnReference(at time.Time) string {
	return fmt.Sprintf("TXN-%d", at.UnixMilli())
}

// NewCorrelationID builds a short correlation tag for tracing one attempt
// across logs.
func NewCorrelationID() string {
	return "PAY-" + strings.ToUpper(uuid.NewString()[:8])
}

// ProcessPaymentRequest is the payload for paying an order.
type ProcessPaymentRequest struct {
	OrderID uuid.UUID       `json:"order_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Method  string          `json:"method" binding:"required"`
}

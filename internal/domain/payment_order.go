package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment order statuses. paid and failed are terminal.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// PaymentOrder is one top-up attempt through the payment gateway.
type PaymentOrder struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          uint              `gorm:"index;not null" json:"user_id"`
	RazorpayOrderID string            `gorm:"size:64;uniqueIndex;not null" json:"razorpay_order_id"`
	Amount          decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"amount"`
	Currency        string            `gorm:"size:8;not null;default:INR" json:"currency"`
	Receipt         string            `gorm:"size:64" json:"receipt"`
	Status          string            `gorm:"size:16;index;not null" json:"status"`
	PaymentID       string            `gorm:"size:64" json:"payment_id,omitempty"`
	PaymentMethod   string            `gorm:"size:32" json:"payment_method,omitempty"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	FailureReason   string            `gorm:"size:255" json:"failure_reason,omitempty"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Terminal reports whether the order can no longer change.
func (o PaymentOrder) Terminal() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusFailed
}

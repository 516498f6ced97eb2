package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction types
const (
	TxTypeCredit = "credit"
	TxTypeDebit  = "debit"
)

// Transaction categories
const (
	CategoryWalletTopup        = "wallet_topup"
	CategoryWithdrawal         = "withdrawal"
	CategoryWithdrawalReversal = "withdrawal_reversal"
	CategoryJobEarning         = "job_earning"
	CategoryJobPayment         = "job_payment"
)

// Transaction statuses
const (
	TxStatusCompleted = "completed"
	TxStatusPending   = "pending"
	TxStatusFailed    = "failed"
)

// WalletTransaction is an append-only ledger entry.
// Only a withdrawal's Status may change after creation.
type WalletTransaction struct {
	ID             uint              `gorm:"primaryKey" json:"id"`                              // Primary key
	UserID         uint              `gorm:"index;not null" json:"user_id"`                     // Owner
	WalletID       uint              `gorm:"index;not null" json:"wallet_id"`                   // Foreign key to Wallet
	PaymentOrderID *uint             `gorm:"index" json:"payment_order_id,omitempty"`           // Set for top-ups
	Type           string            `gorm:"size:16;not null" json:"type"`                      // credit or debit
	Category       string            `gorm:"size:40;index;not null" json:"category"`            // wallet_topup, withdrawal, ...
	Amount         decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"amount"`         // Always positive
	BalanceBefore  decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"balance_before"` // Balance before the entry
	BalanceAfter   decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"balance_after"`  // Balance after the entry
	Description    string            `gorm:"size:255" json:"description"`                       // Human readable
	Status         string            `gorm:"size:16;index;not null" json:"status"`              // completed, pending, failed
	Reference      string            `gorm:"size:120;uniqueIndex;not null" json:"reference"`    // Idempotency key
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`                                // Gateway ids, bank details
	CreatedAt      time.Time         `gorm:"index" json:"created_at"`                           // Timestamp of creation
}

// Signed returns the amount as it applies to the balance.
func (t WalletTransaction) Signed() decimal.Decimal {
	if t.Type == TxTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet Model. Balance is only ever changed by the ledger store.
type Wallet struct {
	ID                uint            `gorm:"primaryKey" json:"id"`                                 // Primary key
	UserID            uint            `gorm:"uniqueIndex" json:"user_id"`                           // Foreign key to User
	Balance           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"` // Wallet balance
	TotalEarned       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_earned"`
	TotalSpent        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_spent"`
	TotalToppedUp     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_topped_up"`
	LastTopupAt       *time.Time      `json:"last_topup_at,omitempty"`
	LastTransactionAt *time.Time      `json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BankDetails is where a withdrawal is paid out to.
type BankDetails struct {
	AccountHolderName string `json:"accountHolderName"`
	AccountNumber     string `json:"accountNumber"`
	IFSC              string `json:"ifsc"`
	BankName          string `json:"bankName"`
	UPIID             string `json:"upiId,omitempty"`
}

// Valid reports whether the details identify a payout destination.
func (b BankDetails) Valid() bool {
	if b.UPIID != "" {
		return true
	}
	return b.AccountHolderName != "" && b.AccountNumber != "" && b.IFSC != ""
}

// Masked returns a copy safe to store in ledger metadata.
func (b BankDetails) Masked() BankDetails {
	m := b
	if n := len(b.AccountNumber); n > 4 {
		m.AccountNumber = "XXXX" + b.AccountNumber[n-4:]
	}
	return m
}

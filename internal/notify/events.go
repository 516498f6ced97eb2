package notify

import (
	"fmt"  // Error wrapping
	"time" // Timestamps

	"github.com/shopspring/decimal" // Money
)

// Kind names a notification type
type Kind string

const (
	KindPaymentSuccess   Kind = "payment_success"
	KindPaymentFailed    Kind = "payment_failed"
	KindLowBalance       Kind = "low_balance"
	KindLargeTransaction Kind = "large_transaction"
	KindWeeklySummary    Kind = "weekly_summary"
)

// Thresholds that trigger balance notifications
var (
	LowBalanceThreshold       = decimal.NewFromInt(100)
	LargeTransactionThreshold = decimal.NewFromInt(5000)
)

// Event is one notification variant. The concrete type is the payload stored
// in Notification.Data.
type Event interface {
	Kind() Kind
	Title() string
	Message() string
}

// PaymentSuccess follows a settled top-up.
type PaymentSuccess struct {
	OrderID    string          `json:"razorpay_order_id"`   // Provider order id
	PaymentID  string          `json:"razorpay_payment_id"` // Provider payment id
	Amount     decimal.Decimal `json:"amount"`              // Amount credited
	NewBalance decimal.Decimal `json:"new_balance"`         // Balance after the credit
}

func (PaymentSuccess) Kind() Kind      { return KindPaymentSuccess }
func (PaymentSuccess) Title() string   { return "Payment Successful" }
func (e PaymentSuccess) Message() string {
	return fmt.Sprintf("₹%s has been added to your wallet. New balance: ₹%s", e.Amount.StringFixed(2), e.NewBalance.StringFixed(2))
}

// PaymentFailed follows a failed or abandoned top-up.
type PaymentFailed struct {
	OrderID string          `json:"razorpay_order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason"`
}

func (PaymentFailed) Kind() Kind    { return KindPaymentFailed }
func (PaymentFailed) Title() string { return "Payment Failed" }
func (e PaymentFailed) Message() string {
	if e.Reason == "" {
		return fmt.Sprintf("Your payment of ₹%s could not be completed.", e.Amount.StringFixed(2))
	}
	return fmt.Sprintf("Your payment of ₹%s could not be completed: %s", e.Amount.StringFixed(2), e.Reason)
}

// LowBalance warns that the balance fell under LowBalanceThreshold.
type LowBalance struct {
	Balance   decimal.Decimal `json:"balance"`
	Threshold decimal.Decimal `json:"threshold"`
}

func (LowBalance) Kind() Kind    { return KindLowBalance }
func (LowBalance) Title() string { return "Low Wallet Balance" }
func (e LowBalance) Message() string {
	return fmt.Sprintf("Your wallet balance is ₹%s. Top up to keep booking services.", e.Balance.StringFixed(2))
}

// LargeTransaction flags a single movement above LargeTransactionThreshold.
type LargeTransaction struct {
	TransactionID uint            `json:"transaction_id"` // Ledger row
	Type          string          `json:"type"`           // credit or debit
	Category      string          `json:"category"`       // Ledger category
	Amount        decimal.Decimal `json:"amount"`         // Amount moved
}

func (LargeTransaction) Kind() Kind    { return KindLargeTransaction }
func (LargeTransaction) Title() string { return "Large Transaction" }
func (e LargeTransaction) Message() string {
	return fmt.Sprintf("A %s of ₹%s was recorded on your wallet.", e.Type, e.Amount.StringFixed(2))
}

// WeeklySummary aggregates the last seven days of ledger activity.
type WeeklySummary struct {
	From         time.Time       `json:"from"`         // Window start
	To           time.Time       `json:"to"`           // Window end
	Credits      decimal.Decimal `json:"credits"`      // Money in
	Debits       decimal.Decimal `json:"debits"`       // Money out
	Net          decimal.Decimal `json:"net"`          // Credits minus debits
	Transactions int             `json:"transactions"` // Rows counted
}

func (WeeklySummary) Kind() Kind    { return KindWeeklySummary }
func (WeeklySummary) Title() string { return "Your Weekly Wallet Summary" }
func (e WeeklySummary) Message() string {
	return fmt.Sprintf("This week: %d transactions, ₹%s in, ₹%s out.", e.Transactions, e.Credits.StringFixed(2), e.Debits.StringFixed(2))
}

// Package gateway isolates the payment provider. Nothing outside this package
// sees Razorpay request or response shapes.
package gateway

import (
	"context"       // Cancellation and deadlines
	"encoding/json" // JSON encoding/decoding
	"time"          // Timestamps

	"github.com/shopspring/decimal" // Money
)

// Client is the set of provider operations the wallet uses.
type Client interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
	FetchOrderPayments(ctx context.Context, orderID string) ([]Payment, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
}

// Payment statuses reported by the provider
const (
	PaymentCreated    = "created"
	PaymentAuthorized = "authorized"
	PaymentCaptured   = "captured"
	PaymentRefunded   = "refunded"
	PaymentFailed     = "failed"
)

// OrderRequest describes a remote order to create.
type OrderRequest struct {
	Amount   decimal.Decimal   // Rupees, converted to paise on the wire
	Currency string            // INR
	Receipt  string            // Local receipt
	Notes    map[string]string // Free-form notes
}

// Order is a remote order.
type Order struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	Currency   string          `json:"currency"`
	Receipt    string          `json:"receipt"`
	Status     string          `json:"status"`
	Attempts   int             `json:"attempts"`
	Notes      Notes           `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Payment is a remote payment attempt against an order.
type Payment struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	Method           string          `json:"method"`
	Captured         bool            `json:"captured"`
	Email            string          `json:"email,omitempty"`
	Contact          string          `json:"contact,omitempty"`
	ErrorCode        string          `json:"error_code,omitempty"`
	ErrorDescription string          `json:"error_description,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Succeeded reports whether the payment was captured. An authorized payment
// that is never captured is refunded by the provider, so it does not count.
func (p Payment) Succeeded() bool {
	return p.Status == PaymentCaptured
}

// CustomerRequest describes a customer profile at the provider.
type CustomerRequest struct {
	Name    string // Display name
	Email   string // Optional
	Contact string // Optional phone
}

// Customer is a provider customer profile.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Notes are free-form key/value pairs attached to provider entities.
// The provider encodes an empty set as [] rather than {}.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := Notes{}
	if m, ok := raw.(map[string]any); ok {
		for k, v := range m {
			switch val := v.(type) {
			case string:
				out[k] = val
			default:
				enc, _ := json.Marshal(val)
				out[k] = string(enc)
			}
		}
	}
	*n = out
	return nil
}

// ToPaise converts rupees to the provider's integer unit.
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromPaise converts the provider's integer unit back to rupees.
func FromPaise(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}

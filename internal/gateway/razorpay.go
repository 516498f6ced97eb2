package gateway

import (
	"bytes"         // Request bodies
	"context"       // Cancellation and deadlines
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error matching
	"fmt"           // Error wrapping
	"io"            // Body reading
	"net/http"      // HTTP client
	"net/url"       // Path escaping
	"strings"       // String helpers
	"time"          // Timestamps
)

// DefaultBaseURL is the Razorpay REST API root.
const DefaultBaseURL = "https://api.razorpay.com/v1"

// Razorpay talks to the Razorpay REST API with basic auth.
type Razorpay struct {
	KeyID     string       // API key id
	KeySecret string       // API key secret
	BaseURL   string       // API root
	HTTP      *http.Client // Client with timeout
}

// NewRazorpay returns a client for the given credentials. An empty baseURL uses DefaultBaseURL.
func NewRazorpay(keyID, keySecret, baseURL string) *Razorpay {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Razorpay{
		KeyID:     keyID,
		KeySecret: keySecret,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

var _ Client = (*Razorpay)(nil)

type orderWire struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	Notes      Notes  `json:"notes"`
	CreatedAt  int64  `json:"created_at"`
}

func (w orderWire) order() *Order {
	return &Order{
		ID:         w.ID,
		Amount:     FromPaise(w.Amount),
		AmountPaid: FromPaise(w.AmountPaid),
		AmountDue:  FromPaise(w.AmountDue),
		Currency:   w.Currency,
		Receipt:    w.Receipt,
		Status:     w.Status,
		Attempts:   w.Attempts,
		Notes:      w.Notes,
		CreatedAt:  time.Unix(w.CreatedAt, 0).UTC(),
	}
}

type paymentWire struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	Captured         bool   `json:"captured"`
	Email            string `json:"email"`
	Contact          string `json:"contact"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
	CreatedAt        int64  `json:"created_at"`
}

func (w paymentWire) payment() Payment {
	return Payment{
		ID:               w.ID,
		OrderID:          w.OrderID,
		Amount:           FromPaise(w.Amount),
		Currency:         w.Currency,
		Status:           w.Status,
		Method:           w.Method,
		Captured:         w.Captured,
		Email:            w.Email,
		Contact:          w.Contact,
		ErrorCode:        w.ErrorCode,
		ErrorDescription: w.ErrorDescription,
		CreatedAt:        time.Unix(w.CreatedAt, 0).UTC(),
	}
}

type errorWire struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder implements orders.create.
func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	payload := map[string]any{
		"amount":   ToPaise(req.Amount),
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		payload["notes"] = req.Notes
	}
	var out orderWire
	if err := r.do(ctx, "orders.create", http.MethodPost, "/orders", payload, &out); err != nil {
		return nil, err
	}
	return out.order(), nil
}

// FetchOrder implements orders.fetch.
func (r *Razorpay) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	var out orderWire
	if err := r.do(ctx, "orders.fetch", http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &out); err != nil {
		return nil, err
	}
	return out.order(), nil
}

// FetchOrderPayments implements orders.fetchPayments.
func (r *Razorpay) FetchOrderPayments(ctx context.Context, orderID string) ([]Payment, error) {
	var out struct {
		Count int           `json:"count"`
		Items []paymentWire `json:"items"`
	}
	if err := r.do(ctx, "orders.fetchPayments", http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/payments", nil, &out); err != nil {
		return nil, err
	}
	payments := make([]Payment, 0, len(out.Items))
	for _, item := range out.Items {
		payments = append(payments, item.payment())
	}
	return payments, nil
}

// FetchPayment implements payments.fetch.
func (r *Razorpay) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var out paymentWire
	if err := r.do(ctx, "payments.fetch", http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &out); err != nil {
		return nil, err
	}
	p := out.payment()
	return &p, nil
}

// CreateCustomer implements customers.create. An existing customer with the
// same contact details is returned instead of failing.
func (r *Razorpay) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	payload := map[string]any{
		"name":          req.Name,
		"email":         req.Email,
		"contact":       req.Contact,
		"fail_existing": "0",
	}
	var out Customer
	if err := r.do(ctx, "customers.create", http.MethodPost, "/customers", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Razorpay) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: err}
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.SetBasicAuth(r.KeyID, r.KeySecret) // Key id and secret as basic auth
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := r.HTTP.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &Error{Op: op, StatusCode: res.StatusCode, Err: err}
	}
	if res.StatusCode >= 300 {
		gerr := &Error{Op: op, StatusCode: res.StatusCode}
		var ew errorWire
		if json.Unmarshal(raw, &ew) == nil { // Provider error envelope
			gerr.Code = ew.Error.Code
			gerr.Description = ew.Error.Description
		}
		if gerr.Description == "" {
			gerr.Err = errors.New(http.StatusText(res.StatusCode))
		}
		return gerr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

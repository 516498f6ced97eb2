package wallet

import (
	"context"                  // Cancellation and deadlines
	"encoding/json"            // JSON encoding/decoding
	"errors"                   // Error matching
	"fmt"                      // Error wrapping
	"spanner/internal/domain"  // Domain models
	"spanner/internal/gateway" // Payment gateway
	"spanner/internal/ledger"  // Ledger store

	"github.com/sirupsen/logrus" // Logging library
)

// Webhook events the wallet acts on
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventOrderPaid       = "order.paid"
)

// webhookEvent is the subset of a provider webhook the wallet reads.
type webhookEvent struct {
	Event string `json:"event"`
	Payload struct {
		Payment struct {
			Entity webhookPayment `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// WebhookResult reports what a webhook did. UserID is zero when no local order matched.
type WebhookResult struct {
	Event   string // Provider event name
	OrderID string // Provider order id
	UserID  uint   // Order owner
	Action  string // What the webhook did
}

// Webhook actions
const (
	ActionSettled        = "settled"
	ActionAlreadySettled = "already_settled"
	ActionFailed         = "failed"
	ActionIgnored        = "ignored"
)

type webhookPayment struct {
	ID               string `json:"id"`                // Provider payment id
	OrderID          string `json:"order_id"`          // Provider order id
	Status           string `json:"status"`            // captured, failed, ...
	Method           string `json:"method"`            // upi, card, ...
	ErrorDescription string `json:"error_description"` // Set on failed payments
}

// HandleWebhook verifies and applies a provider webhook. Settling goes through
// the same idempotent path as the checkout callback, so redeliveries are harmless.
// Events for orders this service does not know are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if !s.verifier.VerifyWebhook(body, signature) {
		return nil, domain.ErrSignatureMismatch
	}
	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}

	payment := ev.Payload.Payment.Entity
	result := &WebhookResult{Event: ev.Event, OrderID: payment.OrderID, Action: ActionIgnored}
	if result.OrderID == "" {
		result.OrderID = ev.Payload.Order.Entity.ID
	}
	log := logrus.WithFields(logrus.Fields{"event": ev.Event, "order_id": result.OrderID, "payment_id": payment.ID})

	var err error
	switch ev.Event {
	case EventPaymentCaptured, EventOrderPaid:
		if result.OrderID == "" || payment.ID == "" {
			return nil, fmt.Errorf("webhook %s without payment entity", ev.Event)
		}
		if payment.Status != gateway.PaymentCaptured {
			log.WithField("status", payment.Status).Warn("Ignoring webhook for an uncaptured payment")
			return result, nil
		}
		var st *ledger.Settlement
		st, err = s.settle(ctx, result.OrderID, payment.ID, payment.Method)
		if err == nil {
			result.UserID = st.Order.UserID
			result.Action = ActionSettled
			if st.AlreadySettled {
				result.Action = ActionAlreadySettled
			}
		}
	case EventPaymentFailed:
		if result.OrderID == "" {
			return nil, fmt.Errorf("webhook %s without order id", ev.Event)
		}
		var order *domain.PaymentOrder
		order, err = s.fail(ctx, result.OrderID, payment.ErrorDescription)
		if err == nil {
			result.UserID = order.UserID
			result.Action = ActionFailed
		}
	default:
		log.Debug("Ignoring webhook event")
		return result, nil
	}

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		log.Warn("Webhook for unknown order")
		return result, nil
	case errors.Is(err, domain.ErrOrderClosed):
		log.Error("Captured payment for a failed order needs a manual refund")
		return result, nil
	case err != nil:
		return nil, err
	}
	return result, nil
}

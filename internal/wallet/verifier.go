package wallet

import (
	"context"                  // Cancellation and deadlines
	"crypto/hmac"              // Signature checks
	"crypto/sha256"            // HMAC hash
	"encoding/hex"             // Hex signatures
	"fmt"                      // Error wrapping
	"spanner/internal/domain"  // Domain models
	"spanner/internal/gateway" // Payment gateway
)

// Verifier is the only gate between a client callback and a wallet credit.
type Verifier struct {
	gateway       gateway.Client // Confirms payments exist
	keySecret     []byte         // Signs checkout callbacks
	webhookSecret []byte         // Signs webhook bodies
}

// NewVerifier returns a verifier for callbacks signed with keySecret and
// webhook bodies signed with webhookSecret.
func NewVerifier(gw gateway.Client, keySecret, webhookSecret string) *Verifier {
	return &Verifier{gateway: gw, keySecret: []byte(keySecret), webhookSecret: []byte(webhookSecret)}
}

// Sign returns the hex HMAC-SHA256 the provider attaches to a checkout callback.
func Sign(secret, orderID, paymentID string) string {
	return signBytes([]byte(secret), []byte(orderID+"|"+paymentID))
}

func signBytes(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the callback signature and then fetches the payment to make
// sure it exists, belongs to orderID and has been captured.
func (v *Verifier) Verify(ctx context.Context, orderID, paymentID, signature string) (*gateway.Payment, error) {
	expected := signBytes(v.keySecret, []byte(orderID+"|"+paymentID))
	if !hmac.Equal([]byte(expected), []byte(signature)) { // Constant-time compare
		return nil, domain.ErrSignatureMismatch
	}
	payment, err := v.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.OrderID != orderID { // Signed pair must match the provider record
		return nil, domain.ErrSignatureMismatch
	}
	if !payment.Succeeded() {
		return nil, fmt.Errorf("%w: payment %s is %s", domain.ErrPaymentNotCaptured, payment.ID, payment.Status)
	}
	return payment, nil
}

// VerifyWebhook checks the signature of a raw webhook body.
func (v *Verifier) VerifyWebhook(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := signBytes(v.webhookSecret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

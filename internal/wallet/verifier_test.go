package wallet

import (
	"context"
	"spanner/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignMatchesKnownVector(t *testing.T) {
	assert.Equal(t, "52115a0d3400de9e86aade1f1b6eba9e8974604f4e267a9e9a16633a4c8dd2cb", Sign("secret", "order_1", "pay_1"))
	assert.NotEqual(t, Sign("secret", "order_1", "pay_1"), Sign("secret", "order_1", "pay_2"))
	assert.NotEqual(t, Sign("secret", "order_1", "pay_1"), Sign("other", "order_1", "pay_1"))
}

func TestVerifyChecksSignatureBeforeFetching(t *testing.T) {
	gw := newFakeGateway()
	v := NewVerifier(gw, testKeySecret, testWebhookSecret)

	// The payment does not exist, so reaching the gateway would return a gateway error
	_, err := v.Verify(context.Background(), "order_1", "pay_1", "deadbeef")
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)

	gw.capture("order_1", "pay_1", 100)
	p, err := v.Verify(context.Background(), "order_1", "pay_1", Sign(testKeySecret, "order_1", "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, "upi", p.Method)
}

func TestVerifyWebhook(t *testing.T) {
	v := NewVerifier(newFakeGateway(), testKeySecret, testWebhookSecret)
	body := []byte(`{"event":"payment.captured"}`)

	assert.True(t, v.VerifyWebhook(body, sign(body)))
	assert.False(t, v.VerifyWebhook(body, ""))
	assert.False(t, v.VerifyWebhook([]byte(`{"event":"payment.failed"}`), sign(body)))
}

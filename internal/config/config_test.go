package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "key-secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "wallet.notifications", cfg.KafkaTopic)
	assert.Equal(t, "key-secret", cfg.RazorpayWebhookSecret)
}

func TestValidateRequiresGatewayCredentials(t *testing.T) {
	cfg := &Config{JWTSecret: "jwt"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAZORPAY_KEY_ID")
	assert.Contains(t, err.Error(), "RAZORPAY_KEY_SECRET")

	cfg.RazorpayKeyID = "rzp_test"
	cfg.RazorpayKeySecret = "secret"
	assert.NoError(t, cfg.Validate())
}

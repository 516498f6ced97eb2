package api

import (
	"errors"                  // Error matching
	"net/http"                // HTTP status codes
	"spanner/internal/domain" // Domain errors
	"spanner/internal/wallet" // Wallet service

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// SignatureHeader carries the webhook body signature
const SignatureHeader = "X-Razorpay-Signature"

// WebhookHandler applies gateway webhooks. Any non-2xx answer makes the gateway retry.
func WebhookHandler(svc *wallet.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData() // Signature covers the raw bytes
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		res, err := svc.HandleWebhook(c.Request.Context(), body, c.GetHeader(SignatureHeader))
		if errors.Is(err, domain.ErrSignatureMismatch) {
			logrus.WithField("client_ip", c.ClientIP()).Warn("Webhook signature mismatch")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Webhook processing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
			return
		}
		if res.UserID != 0 {
			invalidate(c, rdb, res.UserID)
		}
		logrus.WithFields(logrus.Fields{
			"event":    res.Event,   // Webhook event
			"order_id": res.OrderID, // Provider order id
			"action":   res.Action,  // What was done
		}).Info("Webhook processed")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

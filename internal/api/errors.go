package api

import (
	"errors"                   // Error matching
	"net/http"                 // HTTP status codes
	"spanner/internal/domain"  // Domain errors
	"spanner/internal/gateway" // Gateway errors
	"spanner/internal/notify"  // Notification errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respondError maps a service error to its HTTP status and a user-facing message
func respondError(c *gin.Context, err error, action string) {
	var gwErr *gateway.Error
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidBankDetails),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSignatureMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment verification failed"})
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, notify.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderClosed),
		errors.Is(err, domain.ErrWithdrawalResolved),
		errors.Is(err, domain.ErrPaymentNotCaptured):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &gwErr):
		logrus.WithFields(logrus.Fields{
			"op":          gwErr.Op,         // Provider operation
			"status_code": gwErr.StatusCode, // Provider HTTP status
			"code":        gwErr.Code,       // Provider error code
			"error":       err.Error(),      // Error message
		}).Error(action + " failed at the payment gateway")
		c.JSON(http.StatusBadGateway, gin.H{"error": gwErr.Message()})
	default:
		logrus.WithField("error", err.Error()).Error(action + " failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}

// pagination is the envelope of every paginated listing
type pagination struct {
	Page       int   `json:"page"`        // Current page
	PageSize   int   `json:"page_size"`   // Page size
	Total      int64 `json:"total"`       // Total rows
	TotalPages int   `json:"total_pages"` // Total pages
	Cached     bool  `json:"cached"`      // Served from Redis
}

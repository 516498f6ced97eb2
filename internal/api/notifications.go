package api

import (
	"net/http"                    // HTTP status codes
	"spanner/internal/middleware" // Authenticated caller
	"spanner/internal/notify"     // Notifications
	"strconv"                     // String conversion
	"time"                        // Summary window

	"github.com/gin-gonic/gin" // Gin web framework
)

// Notification listing bounds
const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

// ListNotificationsHandler returns the caller's notifications, unread first
func ListNotificationsHandler(n *notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		limit := defaultNotificationLimit
		if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= maxNotificationLimit {
			limit = l
		}
		unreadOnly := c.Query("unread") == "true"
		list, err := n.List(c.Request.Context(), userID, unreadOnly, limit)
		if err != nil {
			respondError(c, err, "Loading notifications")
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": list})
	}
}

// MarkNotificationReadHandler marks one of the caller's notifications read
func MarkNotificationReadHandler(n *notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
			return
		}
		if err := n.MarkRead(c.Request.Context(), userID, uint(id)); err != nil {
			respondError(c, err, "Updating notification")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// WeeklySummaryHandler builds and stores the caller's summary of the last seven days
func WeeklySummaryHandler(n *notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		summary, err := n.WeeklySummary(c.Request.Context(), userID, time.Now())
		if err != nil {
			respondError(c, err, "Building weekly summary")
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	}
}

package api

import (
	"net/http"                    // HTTP status codes
	"spanner/internal/domain"     // Domain models
	"spanner/internal/gateway"    // Amount conversion
	"spanner/internal/ledger"     // Ledger queries
	"spanner/internal/middleware" // Authenticated caller
	"spanner/internal/utils"      // Cache helpers
	"spanner/internal/wallet"     // Wallet service
	"strconv"                     // String conversion

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Money
	"github.com/sirupsen/logrus"    // Logging library
)

// TopupRequest represents a top-up request
type TopupRequest struct {
	Amount decimal.Decimal `json:"amount"` // Amount in rupees
}

// CheckoutOrder is what the checkout client needs to open the payment form
type CheckoutOrder struct {
	ID       string          `json:"id"`           // Provider order id
	Amount   int64           `json:"amount"`       // Amount in paise
	Rupees   decimal.Decimal `json:"amountRupees"` // Amount in rupees
	Currency string          `json:"currency"`     // Always INR
	Receipt  string          `json:"receipt"`      // Local receipt
}

// VerifyPaymentRequest is the checkout callback forwarded by the client
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`   // Provider order id
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"` // Provider payment id
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`  // Callback signature
}

// PaymentFailedRequest reports a failed or abandoned checkout
type PaymentFailedRequest struct {
	RazorpayOrderID  string `json:"razorpay_order_id" binding:"required"` // Provider order id
	ErrorDescription string `json:"error_description"`                    // Provider failure text
}

// WithdrawRequest represents a withdrawal request
type WithdrawRequest struct {
	Amount      decimal.Decimal    `json:"amount"`      // Amount in rupees
	BankDetails domain.BankDetails `json:"bankDetails"` // Payout destination
}

// historyResponse is one page of ledger rows
type historyResponse struct {
	Transactions []domain.WalletTransaction `json:"transactions"` // Ledger rows, newest first
	pagination
}

// TopupHandler opens a top-up order with the payment gateway
func TopupHandler(svc *wallet.Service, keyID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TopupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		order, err := svc.CreateTopup(c.Request.Context(), userID, req.Amount)
		if err != nil {
			respondError(c, err, "Top-up")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order": CheckoutOrder{
				ID:       order.RazorpayOrderID,         // Provider order id
				Amount:   gateway.ToPaise(order.Amount), // Checkout expects paise
				Rupees:   order.Amount,                  // Display amount
				Currency: order.Currency,                // INR
				Receipt:  order.Receipt,                 // Local receipt
			},
			"razorpayKeyId": keyID, // Public key for the checkout client
		})
	}
}

// VerifyPaymentHandler verifies the checkout callback and credits the wallet
func VerifyPaymentHandler(svc *wallet.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		st, err := svc.VerifyPayment(c.Request.Context(), userID, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
		if err != nil {
			respondError(c, err, "Payment verification")
			return
		}
		invalidate(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"newBalance":     st.NewBalance,
			"transaction":    st.Transaction,
			"alreadySettled": st.AlreadySettled,
		})
	}
}

// PaymentFailedHandler records a failed checkout. Closed orders are left alone.
func PaymentFailedHandler(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req PaymentFailedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := svc.HandleFailedPayment(c.Request.Context(), userID, req.RazorpayOrderID, req.ErrorDescription); err != nil {
			respondError(c, err, "Recording payment failure")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// WithdrawHandler debits the wallet for a bank payout
func WithdrawHandler(svc *wallet.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req WithdrawRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		w, txn, err := svc.Withdraw(c.Request.Context(), userID, req.Amount, req.BankDetails)
		if err != nil {
			respondError(c, err, "Withdrawal")
			return
		}
		invalidate(c, rdb, userID)
		c.JSON(http.StatusOK, gin.H{
			"success":                 true,
			"wallet":                  w,
			"transaction":             txn,
			"estimatedProcessingTime": wallet.EstimatedProcessingTime,
		})
	}
}

// GetWalletHandler returns the caller's wallet, recent transactions and payment methods
func GetWalletHandler(svc *wallet.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.WalletKey(userID)
		var snap wallet.Snapshot
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &snap); err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"wallet":             snap.Wallet,
				"recentTransactions": snap.RecentTransactions,
				"paymentMethods":     snap.PaymentMethods,
				"cached":             true,
			})
			return
		}
		fresh, err := svc.Snapshot(ctx, userID)
		if err != nil {
			respondError(c, err, "Loading wallet")
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, fresh, utils.CacheTTL) // Best effort
		c.JSON(http.StatusOK, gin.H{
			"wallet":             fresh.Wallet,
			"recentTransactions": fresh.RecentTransactions,
			"paymentMethods":     fresh.PaymentMethods,
			"cached":             false,
		})
	}
}

// GetTransactionHistoryHandler returns the caller's ledger, paginated and optionally filtered
func GetTransactionHistoryHandler(store *ledger.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page := pageFromQuery(c)
		filter := ledger.TxFilter{
			UserID:   userID,              // Caller only
			Type:     c.Query("type"),     // credit or debit
			Category: c.Query("category"), // e.g. wallet_topup
			Status:   c.Query("status"),   // e.g. pending
			Page:     page,                // Requested page
		}
		ctx := c.Request.Context()
		cacheKey := utils.HistoryKey(userID,
			"page", strconv.Itoa(page.Page), "size", strconv.Itoa(page.PageSize),
			"type", filter.Type, "category", filter.Category, "status", filter.Status)

		var cached historyResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		txs, total, err := store.Transactions(ctx, filter)
		if err != nil {
			respondError(c, err, "Loading transactions")
			return
		}
		resp := historyResponse{Transactions: txs, pagination: paginate(page, total)}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.CacheTTL) // Best effort
		c.JSON(http.StatusOK, resp)
	}
}

// AnalyticsHandler returns the caller's wallet analytics rollup
func AnalyticsHandler(svc *wallet.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.AnalyticsKey(userID)
		var cached wallet.Analytics
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"analytics": cached, "cached": true})
			return
		}
		a, err := svc.Analytics(ctx, userID)
		if err != nil {
			respondError(c, err, "Loading analytics")
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, a, utils.CacheTTL) // Best effort
		c.JSON(http.StatusOK, gin.H{"analytics": a, "cached": false})
	}
}

// OrderDetailsHandler returns one of the caller's orders with the gateway's view of it
func OrderDetailsHandler(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		details, err := svc.OrderDetails(c.Request.Context(), userID, c.Param("orderId"))
		if err != nil {
			respondError(c, err, "Loading order")
			return
		}
		c.JSON(http.StatusOK, details)
	}
}

// pageFromQuery reads page and page_size, falling back to the defaults
func pageFromQuery(c *gin.Context) ledger.Page {
	page := 1                          // Default page
	pageSize := ledger.DefaultPageSize // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= ledger.MaxPageSize {
			pageSize = v // Set page size if valid
		}
	}
	return ledger.Page{Page: page, PageSize: pageSize}
}

func paginate(page ledger.Page, total int64) pagination {
	return pagination{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}
}

// invalidate drops the user's cached views after a balance change
func invalidate(c *gin.Context, rdb *redis.Client, userID uint) {
	if err := utils.InvalidateWallet(c.Request.Context(), rdb, userID); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,      // Affected user
			"error":   err.Error(), // Error message
		}).Warn("Failed to invalidate wallet cache")
	}
}

package api

import (
	"net/http"                // HTTP status codes
	"spanner/internal/domain" // Domain models
	"spanner/internal/ledger" // Ledger queries
	"spanner/internal/utils"  // Cache helpers
	"spanner/internal/wallet" // Wallet service
	"strconv"                 // String conversion
	"strings"                 // String manipulation
	"time"                    // Date filters

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Money
	"gorm.io/gorm"                  // GORM ORM library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID                 uint          `json:"id"`                             // User ID
	Username           string        `json:"username"`                       // Username
	Role               string        `json:"role"`                           // User role
	Email              string        `json:"email,omitempty"`                // Contact email
	Phone              string        `json:"phone,omitempty"`                // Contact phone
	RazorpayCustomerID string        `json:"razorpay_customer_id,omitempty"` // Gateway customer
	Wallet             domain.Wallet `json:"wallet"`                         // Associated wallet
}

// ResolveWithdrawalRequest records a payout outcome
type ResolveWithdrawalRequest struct {
	Status string `json:"status" binding:"required"` // completed or failed
}

// EarningRequest credits a job payout to a worker
type EarningRequest struct {
	Amount      decimal.Decimal `json:"amount"`                       // Amount in rupees
	Reference   string          `json:"reference" binding:"required"` // Job reference, the idempotency key
	Description string          `json:"description"`                  // Ledger description
}

type usersResponse struct {
	Users []UserAdminResponse `json:"users"` // List of users
	pagination
}

type adminTxResponse struct {
	Transactions []domain.WalletTransaction `json:"transactions"` // Ledger rows
	pagination
}

// ListUsersHandler returns users with their wallet info
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page := pageFromQuery(c)
		cacheKey := "admin:users:page=" + strconv.Itoa(page.Page) + ":size=" + strconv.Itoa(page.PageSize)
		var cached usersResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
		var total int64 // Total user count
		if err := db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User // Users with wallets
		offset := (page.Page - 1) * page.PageSize
		if err := db.WithContext(ctx).Preload("Wallet").Order("id asc").Offset(offset).Limit(page.PageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		resp := usersResponse{Users: make([]UserAdminResponse, len(users)), pagination: paginate(page, total)}
		for i, u := range users {
			resp.Users[i] = UserAdminResponse{
				ID:                 u.ID,                 // User ID
				Username:           u.Username,           // Username
				Role:               u.Role,               // User role
				Email:              u.Email,              // Contact email
				Phone:              u.Phone,              // Contact phone
				RazorpayCustomerID: u.RazorpayCustomerID, // Gateway customer
				Wallet:             u.Wallet,             // Associated wallet
			}
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.CacheTTL) // Best effort
		c.JSON(http.StatusOK, resp)
	}
}

// ListTransactionsHandler returns the ledger across users, with optional filters
func ListTransactionsHandler(store *ledger.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page := pageFromQuery(c)
		filter := ledger.TxFilter{
			Type:     c.Query("type"),     // credit or debit
			Category: c.Query("category"), // e.g. withdrawal
			Status:   c.Query("status"),   // e.g. pending
			Page:     page,                // Requested page
		}
		if v := c.Query("user_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
				return
			}
			filter.UserID = uint(id)
		}
		var err error
		if filter.From, err = parseDate(c.Query("from"), false); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
		if filter.To, err = parseDate(c.Query("to"), true); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}

		// Build cache key from all query params
		var keyParts []string
		for _, k := range []string{"user_id", "type", "category", "status", "from", "to"} {
			keyParts = append(keyParts, k+"="+c.Query(k))
		}
		keyParts = append(keyParts, "page="+strconv.Itoa(page.Page), "size="+strconv.Itoa(page.PageSize))
		cacheKey := "admin:txs:" + strings.Join(keyParts, ":")

		var cached adminTxResponse
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
		resp := adminTxResponse{Transactions: txs, pagination: paginate(page, total)}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.CacheTTL) // Best effort
		c.JSON(http.StatusOK, resp)
	}
}

// ListOrdersHandler returns payment orders, optionally filtered by status
func ListOrdersHandler(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pageFromQuery(c)
		filter := ledger.OrderFilter{Status: c.Query("status"), Page: page}
		if v := c.Query("user_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
				return
			}
			filter.UserID = uint(id)
		}
		orders, total, err := store.Orders(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, "Loading orders")
			return
		}
		p := paginate(page, total)
		c.JSON(http.StatusOK, gin.H{
			"orders":      orders,       // Payment orders
			"page":        p.Page,       // Current page
			"page_size":   p.PageSize,   // Page size
			"total":       p.Total,      // Total orders
			"total_pages": p.TotalPages, // Total pages
		})
	}
}

// ReconcileOrderHandler settles an open order when the gateway holds a successful payment for it
func ReconcileOrderHandler(svc *wallet.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Reconcile(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			respondError(c, err, "Reconciliation")
			return
		}
		if st == nil {
			c.JSON(http.StatusOK, gin.H{"settled": false})
			return
		}
		if !st.AlreadySettled {
			invalidate(c, rdb, st.Order.UserID)
		}
		c.JSON(http.StatusOK, gin.H{
			"settled":        true,
			"alreadySettled": st.AlreadySettled,
			"order":          st.Order,
			"transaction":    st.Transaction,
			"newBalance":     st.NewBalance,
		})
	}
}

// ResolveWithdrawalHandler records whether a pending withdrawal was paid out
func ResolveWithdrawalHandler(svc *wallet.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction id"})
			return
		}
		var req ResolveWithdrawalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		res, err := svc.ResolveWithdrawal(c.Request.Context(), uint(id), req.Status)
		if err != nil {
			respondError(c, err, "Resolving withdrawal")
			return
		}
		invalidate(c, rdb, res.Withdrawal.UserID)
		c.JSON(http.StatusOK, gin.H{"transaction": res.Withdrawal, "reversal": res.Reversal})
	}
}

// RecordEarningHandler credits a job payout to a worker's wallet
func RecordEarningHandler(db *gorm.DB, svc *wallet.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
		if err != nil || userID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		var user domain.User
		if err := db.WithContext(c.Request.Context()).Select("id").First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		var req EarningRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Description == "" {
			req.Description = "Job earning"
		}
		w, txn, duplicate, err := svc.RecordEarning(c.Request.Context(), uint(userID), req.Amount, req.Reference, req.Description)
		if err != nil {
			respondError(c, err, "Recording earning")
			return
		}
		status := http.StatusCreated
		if duplicate {
			status = http.StatusOK
		} else {
			invalidate(c, rdb, uint(userID))
		}
		c.JSON(status, gin.H{"wallet": w, "transaction": txn, "duplicate": duplicate})
	}
}

// parseDate accepts RFC 3339 or a plain date. A plain end date covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

package api

import (
	"net/http"                    // HTTP status codes
	"spanner/internal/gateway"    // Payment gateway
	"spanner/internal/ledger"     // Ledger store
	"spanner/internal/middleware" // Auth and logging middleware
	"spanner/internal/notify"     // Notifications
	"spanner/internal/wallet"     // Wallet service

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	DB            *gorm.DB         // Database
	Redis         *redis.Client    // Cache, nil disables caching
	Ledger        *ledger.Store    // Ledger reads
	Wallet        *wallet.Service  // Wallet operations
	Notifier      *notify.Notifier // Notifications
	Gateway       gateway.Client   // Payment gateway
	JWTSecret     string           // Token signing secret
	RazorpayKeyID string           // Public key for the checkout client
}

// NewRouter builds the HTTP surface
func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Auth routes
	r.POST("/api/user", RegisterHandler(d.DB, d.Gateway))            // Registration endpoint
	r.POST("/api/user/login", LoginHandler(d.DB, d.JWTSecret))       // Login endpoint
	r.POST("/api/wallet/webhook", WebhookHandler(d.Wallet, d.Redis)) // Gateway webhook, signed body instead of JWT

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/api/wallet", middleware.JWTAuthMiddleware(d.JWTSecret))
	walletGroup.GET("", GetWalletHandler(d.Wallet, d.Redis))                          // Wallet snapshot
	walletGroup.POST("/topup", TopupHandler(d.Wallet, d.RazorpayKeyID))               // Open a top-up order
	walletGroup.POST("/verify-payment", VerifyPaymentHandler(d.Wallet, d.Redis))      // Checkout callback
	walletGroup.POST("/payment-failed", PaymentFailedHandler(d.Wallet))               // Failed checkout
	walletGroup.POST("/withdraw", WithdrawHandler(d.Wallet, d.Redis))                 // Bank withdrawal
	walletGroup.GET("/transactions", GetTransactionHistoryHandler(d.Ledger, d.Redis)) // Transaction history
	walletGroup.GET("/analytics", AnalyticsHandler(d.Wallet, d.Redis))                // Analytics rollup
	walletGroup.GET("/orders/:orderId", OrderDetailsHandler(d.Wallet))                // Order with gateway status

	// Notification routes (protected by JWT)
	notificationGroup := r.Group("/api/notifications", middleware.JWTAuthMiddleware(d.JWTSecret))
	notificationGroup.GET("", ListNotificationsHandler(d.Notifier))               // List notifications
	notificationGroup.PATCH("/:id/read", MarkNotificationReadHandler(d.Notifier)) // Mark one read
	notificationGroup.POST("/weekly-summary", WeeklySummaryHandler(d.Notifier))   // Build weekly summary

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin", middleware.JWTAuthMiddleware(d.JWTSecret), middleware.AdminOnlyMiddleware(d.DB))
	adminGroup.GET("/users", ListUsersHandler(d.DB, d.Redis))                                   // List users
	adminGroup.GET("/transactions", ListTransactionsHandler(d.Ledger, d.Redis))                 // List transactions
	adminGroup.GET("/orders", ListOrdersHandler(d.Ledger))                                      // List payment orders
	adminGroup.POST("/orders/:orderId/reconcile", ReconcileOrderHandler(d.Wallet, d.Redis))     // Settle from gateway state
	adminGroup.PATCH("/withdrawals/:id", ResolveWithdrawalHandler(d.Wallet, d.Redis))           // Record payout outcome
	adminGroup.POST("/wallets/:userId/earnings", RecordEarningHandler(d.DB, d.Wallet, d.Redis)) // Credit a job payout

	return r
}

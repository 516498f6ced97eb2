// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"spanner/internal/db"
	"spanner/internal/domain"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated SQLite database that lives for the duration of the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "spanner.db")
	gdb, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// SQLite allows one writer; a single connection serializes goroutines instead of failing them
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(gdb), "migrate")
	return gdb
}

// SeedUser inserts a user with the given role.
func SeedUser(t *testing.T, gdb *gorm.DB, username, role string) domain.User {
	t.Helper()
	u := domain.User{Username: username, Password: "x", Role: role}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

// SeedOrder inserts a payment order in created state.
func SeedOrder(t *testing.T, gdb *gorm.DB, userID uint, razorpayOrderID string, amount int64) domain.PaymentOrder {
	t.Helper()
	o := domain.PaymentOrder{
		UserID:          userID,
		RazorpayOrderID: razorpayOrderID,
		Amount:          decimal.NewFromInt(amount),
		Currency:        "INR",
		Status:          domain.OrderStatusCreated,
	}
	require.NoError(t, gdb.Create(&o).Error)
	return o
}

// RequireLedgerReconciles replays the user's ledger from zero and checks that
// every row chains onto the previous one and the result equals the wallet balance.
func RequireLedgerReconciles(t *testing.T, gdb *gorm.DB, userID uint) {
	t.Helper()

	var wallet domain.Wallet
	require.NoError(t, gdb.Where("user_id = ?", userID).First(&wallet).Error)

	var txs []domain.WalletTransaction
	require.NoError(t, gdb.Where("user_id = ?", userID).Order("created_at asc, id asc").Find(&txs).Error)

	balance := decimal.Zero
	for _, tx := range txs {
		require.Truef(t, tx.BalanceBefore.Equal(balance), "tx %d balance_before %s, replay has %s", tx.ID, tx.BalanceBefore, balance)
		balance = balance.Add(tx.Signed())
		require.Truef(t, tx.BalanceAfter.Equal(balance), "tx %d balance_after %s, replay has %s", tx.ID, tx.BalanceAfter, balance)
	}
	require.Truef(t, wallet.Balance.Equal(balance), "wallet balance %s, replay has %s", wallet.Balance, balance)
}

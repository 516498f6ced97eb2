// Package ledger is the only writer of wallet balances. Every balance change
// happens inside one database transaction together with the ledger row that
// explains it.
package ledger

import (
	"context"                 // Cancellation and deadlines
	"errors"                  // Error matching
	"fmt"                     // Error wrapping
	"spanner/internal/domain" // Domain models
	"time"                    // Timestamps

	"github.com/google/uuid"        // Unique references
	"github.com/shopspring/decimal" // Money
	"gorm.io/datatypes"             // JSON columns
	"gorm.io/gorm"                  // GORM ORM library
)

// MinWithdrawal is the smallest amount that may be withdrawn.
var MinWithdrawal = decimal.NewFromInt(100)

// maxAmount is the first value a decimal(14,2) column cannot hold.
var maxAmount = decimal.New(1, 12)

// ValidateAmount rejects amounts the money columns cannot store exactly:
// zero or negative values, fractions of a paisa and out-of-range values.
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return fmt.Errorf("%w: must be positive", domain.ErrInvalidAmount)
	case !amount.Equal(amount.Round(2)):
		return fmt.Errorf("%w: at most two decimal places", domain.ErrInvalidAmount)
	case amount.GreaterThanOrEqual(maxAmount):
		return fmt.Errorf("%w: too large", domain.ErrInvalidAmount)
	}
	return nil
}

// Store is the gorm-backed ledger.
type Store struct {
	db *gorm.DB
}

// NewStore returns a ledger on top of db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Settlement is the outcome of settling a payment order.
type Settlement struct {
	NewBalance     decimal.Decimal           `json:"newBalance"`     // Balance after the credit
	Transaction    *domain.WalletTransaction `json:"transaction"`    // The credit row
	Order          *domain.PaymentOrder      `json:"order"`          // The settled order
	AlreadySettled bool                      `json:"alreadySettled"` // True on redelivery
}

// Resolution is the outcome of resolving a pending withdrawal.
type Resolution struct {
	Withdrawal *domain.WalletTransaction `json:"withdrawal"`         // The resolved withdrawal row
	Reversal   *domain.WalletTransaction `json:"reversal,omitempty"` // Credit for a failed payout, nil otherwise
}

// TopupReference is the idempotency key of the credit row for a settled order.
func TopupReference(razorpayOrderID string) string {
	return "topup:" + razorpayOrderID
}

// Wallet returns the user's wallet, creating an empty one on first access.
func (s *Store) Wallet(ctx context.Context, userID uint) (*domain.Wallet, error) {
	db := s.db.WithContext(ctx)
	var w domain.Wallet
	err := db.Where("user_id = ?", userID).First(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = domain.Wallet{UserID: userID}
	if err := db.Create(&w).Error; err != nil {
		// A concurrent first access may have created it
		if rerr := db.Where("user_id = ?", userID).First(&w).Error; rerr != nil {
			return nil, fmt.Errorf("create wallet: %w", err)
		}
	}
	return &w, nil
}

// CreateOrder persists a new payment order in created state.
func (s *Store) CreateOrder(ctx context.Context, order *domain.PaymentOrder) error {
	if err := ValidateAmount(order.Amount); err != nil {
		return err
	}
	order.Status = domain.OrderStatusCreated
	return s.db.WithContext(ctx).Create(order).Error
}

// OrderByGatewayID looks an order up by the provider's order id.
func (s *Store) OrderByGatewayID(ctx context.Context, razorpayOrderID string) (*domain.PaymentOrder, error) {
	return orderByGatewayID(s.db.WithContext(ctx), razorpayOrderID)
}

func orderByGatewayID(db *gorm.DB, razorpayOrderID string) (*domain.PaymentOrder, error) {
	var order domain.PaymentOrder
	if err := db.Where("razorpay_order_id = ?", razorpayOrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// SettlePayment marks the order paid, credits the wallet and appends the
// credit row, all in one transaction. Settling an already paid order returns
// the original settlement with AlreadySettled set and changes nothing.
func (s *Store) SettlePayment(ctx context.Context, razorpayOrderID, paymentID, method string) (*Settlement, error) {
	order, err := s.OrderByGatewayID(ctx, razorpayOrderID)
	if err != nil {
		return nil, err
	}
	if err := ValidateAmount(order.Amount); err != nil {
		return nil, fmt.Errorf("order %s: %w", razorpayOrderID, err)
	}
	if _, err := s.Wallet(ctx, order.UserID); err != nil {
		return nil, err
	}

	now := time.Now()
	var out *Settlement
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Compare-and-set: only one caller moves the order out of created
		res := tx.Model(&domain.PaymentOrder{}).
			Where("razorpay_order_id = ? AND status = ?", razorpayOrderID, domain.OrderStatusCreated).
			Updates(map[string]any{
				"status":         domain.OrderStatusPaid,
				"payment_id":     paymentID,
				"payment_method": method,
				"paid_at":        now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 { // Lost the race or already terminal
			existing, err := existingSettlement(tx, razorpayOrderID)
			if err != nil {
				return err
			}
			out = existing
			return nil
		}

		paid, err := orderByGatewayID(tx, razorpayOrderID)
		if err != nil {
			return err
		}
		wallet, before, err := credit(tx, paid.UserID, paid.Amount, map[string]any{
			"total_topped_up": gorm.Expr("total_topped_up + ?", paid.Amount),
			"last_topup_at":   now,
		})
		if err != nil {
			return err
		}

		orderID := paid.ID
		txn := &domain.WalletTransaction{
			UserID:         paid.UserID,
			WalletID:       wallet.ID,
			PaymentOrderID: &orderID,
			Type:           domain.TxTypeCredit,
			Category:       domain.CategoryWalletTopup,
			Amount:         paid.Amount,
			BalanceBefore:  before,
			BalanceAfter:   wallet.Balance,
			Description:    "Wallet top-up via " + methodLabel(method),
			Status:         domain.TxStatusCompleted,
			Reference:      TopupReference(razorpayOrderID),
			Metadata: datatypes.JSONMap{
				"razorpay_order_id":   razorpayOrderID,
				"razorpay_payment_id": paymentID,
				"payment_method":      method,
			},
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		out = &Settlement{NewBalance: wallet.Balance, Transaction: txn, Order: paid}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func existingSettlement(tx *gorm.DB, razorpayOrderID string) (*Settlement, error) {
	order, err := orderByGatewayID(tx, razorpayOrderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case domain.OrderStatusPaid:
		var txn domain.WalletTransaction
		if err := tx.Where("reference = ?", TopupReference(razorpayOrderID)).First(&txn).Error; err != nil {
			return nil, fmt.Errorf("paid order %s has no ledger row: %w", razorpayOrderID, err)
		}
		return &Settlement{NewBalance: txn.BalanceAfter, Transaction: &txn, Order: order, AlreadySettled: true}, nil
	case domain.OrderStatusFailed:
		return nil, domain.ErrOrderClosed
	default:
		return nil, fmt.Errorf("order %s in unexpected status %q", razorpayOrderID, order.Status)
	}
}

// FailPayment marks a created order failed. The wallet is never touched.
// An order that already reached a terminal state returns ErrAlreadySettled.
func (s *Store) FailPayment(ctx context.Context, razorpayOrderID, reason string) (*domain.PaymentOrder, error) {
	db := s.db.WithContext(ctx)
	res := db.Model(&domain.PaymentOrder{}).
		Where("razorpay_order_id = ? AND status = ?", razorpayOrderID, domain.OrderStatusCreated).
		Updates(map[string]any{"status": domain.OrderStatusFailed, "failure_reason": truncate(reason, 255)})
	if res.Error != nil {
		return nil, res.Error
	}
	order, err := orderByGatewayID(db, razorpayOrderID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return order, domain.ErrAlreadySettled
	}
	return order, nil
}

// Withdraw debits the wallet immediately and records a pending withdrawal.
// Payout to the bank happens out of band.
func (s *Store) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, bank domain.BankDetails) (*domain.Wallet, *domain.WalletTransaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, nil, err
	}
	if amount.LessThan(MinWithdrawal) {
		return nil, nil, fmt.Errorf("%w: minimum withdrawal is %s", domain.ErrInvalidAmount, MinWithdrawal)
	}
	if !bank.Valid() {
		return nil, nil, domain.ErrInvalidBankDetails
	}
	wallet, err := s.Wallet(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	var updated domain.Wallet
	var txn *domain.WalletTransaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Wallet{}).
			Where("id = ? AND balance >= ?", wallet.ID, amount).
			Updates(map[string]any{
				"balance":             gorm.Expr("balance - ?", amount),
				"total_spent":         gorm.Expr("total_spent + ?", amount),
				"last_transaction_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 { // Guarded by balance >= amount
			return domain.ErrInsufficientBalance
		}
		if err := tx.First(&updated, wallet.ID).Error; err != nil {
			return err
		}
		txn = &domain.WalletTransaction{
			UserID:        userID,
			WalletID:      wallet.ID,
			Type:          domain.TxTypeDebit,
			Category:      domain.CategoryWithdrawal,
			Amount:        amount,
			BalanceBefore: updated.Balance.Add(amount),
			BalanceAfter:  updated.Balance,
			Description:   "Withdrawal to bank account",
			Status:        domain.TxStatusPending,
			Reference:     "withdrawal:" + uuid.NewString(),
			Metadata:      datatypes.JSONMap{"bank_details": bank.Masked()},
		}
		return tx.Create(txn).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, txn, nil
}

// ResolveWithdrawal advances a pending withdrawal to completed or failed.
// A failed payout puts the money back with a withdrawal_reversal credit.
func (s *Store) ResolveWithdrawal(ctx context.Context, transactionID uint, status string) (*Resolution, error) {
	if status != domain.TxStatusCompleted && status != domain.TxStatusFailed {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	var out Resolution
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.WalletTransaction{}).
			Where("id = ? AND category = ? AND status = ?", transactionID, domain.CategoryWithdrawal, domain.TxStatusPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		var withdrawal domain.WalletTransaction
		if err := tx.Where("id = ? AND category = ?", transactionID, domain.CategoryWithdrawal).First(&withdrawal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTransactionNotFound
			}
			return err
		}
		if res.RowsAffected == 0 {
			return domain.ErrWithdrawalResolved
		}
		out.Withdrawal = &withdrawal
		if status == domain.TxStatusCompleted {
			return nil
		}

		wallet, before, err := credit(tx, withdrawal.UserID, withdrawal.Amount, nil)
		if err != nil {
			return err
		}
		out.Reversal = &domain.WalletTransaction{
			UserID:        withdrawal.UserID,
			WalletID:      wallet.ID,
			Type:          domain.TxTypeCredit,
			Category:      domain.CategoryWithdrawalReversal,
			Amount:        withdrawal.Amount,
			BalanceBefore: before,
			BalanceAfter:  wallet.Balance,
			Description:   "Withdrawal failed, amount returned to wallet",
			Status:        domain.TxStatusCompleted,
			Reference:     fmt.Sprintf("withdrawal_reversal:%d", withdrawal.ID),
			Metadata:      datatypes.JSONMap{"withdrawal_id": withdrawal.ID},
		}
		return tx.Create(out.Reversal).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordEarning credits a job payout to a worker's wallet. The reference makes
// it idempotent: a repeated reference returns the original row untouched.
func (s *Store) RecordEarning(ctx context.Context, userID uint, amount decimal.Decimal, reference, description string) (*domain.Wallet, *domain.WalletTransaction, bool, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, nil, false, err
	}
	reference = "earning:" + reference
	if _, err := s.Wallet(ctx, userID); err != nil {
		return nil, nil, false, err
	}

	var wallet *domain.Wallet
	var txn domain.WalletTransaction
	duplicate := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("reference = ?", reference).First(&txn).Error
		if err == nil {
			duplicate = true // Reference already credited
			wallet = &domain.Wallet{}
			return tx.Where("user_id = ?", txn.UserID).First(wallet).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		w, before, err := credit(tx, userID, amount, map[string]any{
			"total_earned": gorm.Expr("total_earned + ?", amount),
		})
		if err != nil {
			return err
		}
		wallet = w
		txn = domain.WalletTransaction{
			UserID:        userID,
			WalletID:      w.ID,
			Type:          domain.TxTypeCredit,
			Category:      domain.CategoryJobEarning,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  w.Balance,
			Description:   description,
			Status:        domain.TxStatusCompleted,
			Reference:     reference,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, nil, false, err
	}
	return wallet, &txn, duplicate, nil
}

// credit adds amount to the user's balance with a single atomic update and
// returns the wallet after the change plus the balance before it.
func credit(tx *gorm.DB, userID uint, amount decimal.Decimal, extra map[string]any) (*domain.Wallet, decimal.Decimal, error) {
	updates := map[string]any{
		"balance":             gorm.Expr("balance + ?", amount),
		"last_transaction_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(&domain.Wallet{}).Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		return nil, decimal.Zero, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, decimal.Zero, fmt.Errorf("wallet for user %d not found", userID)
	}
	var w domain.Wallet
	if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, decimal.Zero, err
	}
	return &w, w.Balance.Sub(amount), nil // Wallet after, balance before
}

func methodLabel(method string) string {
	if method == "" {
		return "Razorpay"
	}
	return method
}

// truncate keeps the first n characters of s. Column sizes count characters, not bytes.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

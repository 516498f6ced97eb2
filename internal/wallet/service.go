// Package wallet composes the payment flow: order initiation, verification,
// settlement through the ledger and the notifications that follow.
package wallet

import (
	"context"                  // Cancellation and deadlines
	"errors"                   // Error matching
	"fmt"                      // Error wrapping
	"spanner/internal/domain"  // Domain models
	"spanner/internal/gateway" // Payment gateway
	"spanner/internal/ledger"  // Ledger store
	"spanner/internal/notify"  // Notifications
	"time"                     // Timestamps

	"github.com/google/uuid"        // Unique references
	"github.com/shopspring/decimal" // Money
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/datatypes"             // JSON columns
)

// Top-up bounds in rupees
var (
	MinTopup = decimal.NewFromInt(10)
	MaxTopup = decimal.NewFromInt(50000)
)

const (
	// Currency of every order
	Currency = "INR"
	// EstimatedProcessingTime is shown to users after a withdrawal request
	EstimatedProcessingTime = "2-3 business days"
	// RecentTransactionLimit is the number of rows in a wallet snapshot
	RecentTransactionLimit = 10
)

// LedgerStore is the persistence the wallet flow needs. *ledger.Store implements it.
type LedgerStore interface {
	Wallet(ctx context.Context, userID uint) (*domain.Wallet, error)
	CreateOrder(ctx context.Context, order *domain.PaymentOrder) error
	OrderByGatewayID(ctx context.Context, razorpayOrderID string) (*domain.PaymentOrder, error)
	SettlePayment(ctx context.Context, razorpayOrderID, paymentID, method string) (*ledger.Settlement, error)
	FailPayment(ctx context.Context, razorpayOrderID, reason string) (*domain.PaymentOrder, error)
	Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, bank domain.BankDetails) (*domain.Wallet, *domain.WalletTransaction, error)
	ResolveWithdrawal(ctx context.Context, transactionID uint, status string) (*ledger.Resolution, error)
	RecordEarning(ctx context.Context, userID uint, amount decimal.Decimal, reference, description string) (*domain.Wallet, *domain.WalletTransaction, bool, error)
	RecentTransactions(ctx context.Context, userID uint, limit int) ([]domain.WalletTransaction, error)
	TransactionsBetween(ctx context.Context, userID uint, from, to time.Time) ([]domain.WalletTransaction, error)
}

// Notifier receives the events the wallet flow emits. *notify.Notifier implements it.
type Notifier interface {
	Notify(ctx context.Context, userID uint, events ...notify.Event)
	CheckLowBalance(ctx context.Context, wallet *domain.Wallet) bool
}

// Service runs the wallet operations.
type Service struct {
	ledger   LedgerStore    // Balance and order persistence
	gateway  gateway.Client // Payment provider
	verifier *Verifier      // Callback and webhook signatures
	notifier Notifier       // User notifications
}

// NewService wires the wallet flow.
func NewService(store LedgerStore, gw gateway.Client, verifier *Verifier, notifier Notifier) *Service {
	return &Service{ledger: store, gateway: gw, verifier: verifier, notifier: notifier}
}

// Snapshot is the wallet overview returned to its owner.
type Snapshot struct {
	Wallet             *domain.Wallet             `json:"wallet"`             // Current balance and totals
	RecentTransactions []domain.WalletTransaction `json:"recentTransactions"` // Newest first
	PaymentMethods     []gateway.PaymentMethod    `json:"paymentMethods"`     // Checkout options
}

// OrderDetails pairs a local order with the provider's view of it.
type OrderDetails struct {
	Order    *domain.PaymentOrder `json:"order"`         // Local order
	Remote   *gateway.Order       `json:"razorpayOrder"` // Provider order
	Payments []gateway.Payment    `json:"payments"`      // Provider payment attempts
}

// CreateTopup opens a provider order for amount and records it locally.
// Nothing is stored when the provider call fails.
func (s *Service) CreateTopup(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.PaymentOrder, error) {
	if amount.LessThan(MinTopup) || amount.GreaterThan(MaxTopup) {
		return nil, fmt.Errorf("%w: top-up must be between ₹%s and ₹%s", domain.ErrInvalidAmount, MinTopup, MaxTopup)
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("wallet_%d_%s", userID, uuid.NewString()[:8])
	remote, err := s.gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   amount,
		Currency: Currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"user_id": fmt.Sprint(userID),
			"purpose": "wallet_topup",
		},
	})
	if err != nil {
		return nil, err // Nothing stored locally
	}

	order := &domain.PaymentOrder{
		UserID:          userID,
		RazorpayOrderID: remote.ID,
		Amount:          amount,
		Currency:        Currency,
		Receipt:         receipt,
		Metadata:        datatypes.JSONMap{"purpose": "wallet_topup"},
	}
	if err := s.ledger.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("store order %s: %w", remote.ID, err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"order_id": order.RazorpayOrderID,
		"amount":   amount.StringFixed(2),
	}).Info("Top-up order created")
	return order, nil
}

// VerifyPayment settles the user's order after the checkout callback passes verification.
func (s *Service) VerifyPayment(ctx context.Context, userID uint, orderID, paymentID, signature string) (*ledger.Settlement, error) {
	payment, err := s.verifier.Verify(ctx, orderID, paymentID, signature)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "order_id": orderID}).WithError(err).Warn("Payment verification failed")
		return nil, err
	}
	if _, err := s.ownedOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.settle(ctx, orderID, payment.ID, payment.Method)
}

// HandleFailedPayment records a failed or abandoned checkout. An order that is
// already terminal is left alone.
func (s *Service) HandleFailedPayment(ctx context.Context, userID uint, orderID, reason string) error {
	if _, err := s.ownedOrder(ctx, userID, orderID); err != nil {
		return err
	}
	_, err := s.fail(ctx, orderID, reason)
	return err
}

// Withdraw debits the wallet for a bank payout.
func (s *Service) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, bank domain.BankDetails) (*domain.Wallet, *domain.WalletTransaction, error) {
	wallet, txn, err := s.ledger.Withdraw(ctx, userID, amount, bank)
	if err != nil {
		return nil, nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": txn.ID,
		"amount":         amount.StringFixed(2),
	}).Info("Withdrawal requested")
	s.afterMovement(ctx, wallet, txn)
	return wallet, txn, nil
}

// ResolveWithdrawal records the payout outcome of a pending withdrawal.
func (s *Service) ResolveWithdrawal(ctx context.Context, transactionID uint, status string) (*ledger.Resolution, error) {
	res, err := s.ledger.ResolveWithdrawal(ctx, transactionID, status)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"user_id":        res.Withdrawal.UserID,
		"status":         status,
	}).Info("Withdrawal resolved")
	return res, nil
}

// RecordEarning credits a job payout. A repeated reference is a no-op.
func (s *Service) RecordEarning(ctx context.Context, userID uint, amount decimal.Decimal, reference, description string) (*domain.Wallet, *domain.WalletTransaction, bool, error) {
	if reference == "" {
		return nil, nil, false, errors.New("reference is required")
	}
	wallet, txn, duplicate, err := s.ledger.RecordEarning(ctx, userID, amount, reference, description)
	if err != nil {
		return nil, nil, false, err
	}
	if !duplicate {
		s.afterMovement(ctx, wallet, txn)
	}
	return wallet, txn, duplicate, nil
}

// Reconcile asks the provider about an open order and settles it when a
// captured payment exists. A nil settlement means nothing was captured yet.
func (s *Service) Reconcile(ctx context.Context, orderID string) (*ledger.Settlement, error) {
	order, err := s.ledger.OrderByGatewayID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case domain.OrderStatusPaid:
		return s.ledger.SettlePayment(ctx, orderID, order.PaymentID, order.PaymentMethod)
	case domain.OrderStatusFailed:
		return nil, domain.ErrOrderClosed
	}

	payments, err := s.gateway.FetchOrderPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if p.Succeeded() {
			return s.settle(ctx, orderID, p.ID, p.Method)
		}
	}
	return nil, nil
}

// Snapshot returns the wallet, its latest transactions and the payment methods.
func (s *Service) Snapshot(ctx context.Context, userID uint) (*Snapshot, error) {
	wallet, err := s.ledger.Wallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.ledger.RecentTransactions(ctx, userID, RecentTransactionLimit)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Wallet: wallet, RecentTransactions: recent, PaymentMethods: gateway.PaymentMethods()}, nil
}

// Analytics rolls up the user's whole ledger.
func (s *Service) Analytics(ctx context.Context, userID uint) (*Analytics, error) {
	txs, err := s.ledger.TransactionsBetween(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return Summarize(txs), nil
}

// OrderDetails returns the user's order together with the provider's order and payments.
func (s *Service) OrderDetails(ctx context.Context, userID uint, orderID string) (*OrderDetails, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	remote, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	payments, err := s.gateway.FetchOrderPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetails{Order: order, Remote: remote, Payments: payments}, nil
}

// ownedOrder hides other users' orders behind ErrOrderNotFound.
func (s *Service) ownedOrder(ctx context.Context, userID uint, orderID string) (*domain.PaymentOrder, error) {
	order, err := s.ledger.OrderByGatewayID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrOrderNotFound // Same answer as a missing order
	}
	return order, nil
}

func (s *Service) settle(ctx context.Context, orderID, paymentID, method string) (*ledger.Settlement, error) {
	st, err := s.ledger.SettlePayment(ctx, orderID, paymentID, method)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{
		"user_id":    st.Order.UserID,
		"order_id":   orderID,
		"payment_id": paymentID,
		"amount":     st.Order.Amount.StringFixed(2),
	})
	if st.AlreadySettled {
		log.Info("Payment already settled")
		return st, nil
	}
	log.WithField("balance", st.NewBalance.StringFixed(2)).Info("Payment settled")

	wallet := &domain.Wallet{UserID: st.Order.UserID, Balance: st.NewBalance}
	s.afterMovement(ctx, wallet, st.Transaction, notify.PaymentSuccess{
		OrderID:    orderID,
		PaymentID:  paymentID,
		Amount:     st.Order.Amount,
		NewBalance: st.NewBalance,
	})
	return st, nil
}

// fail closes an open order as failed. An already closed order is returned unchanged.
func (s *Service) fail(ctx context.Context, orderID, reason string) (*domain.PaymentOrder, error) {
	if reason == "" {
		reason = "Payment failed"
	}
	order, err := s.ledger.FailPayment(ctx, orderID, reason)
	if errors.Is(err, domain.ErrAlreadySettled) {
		logrus.WithFields(logrus.Fields{"order_id": orderID, "status": order.Status}).Info("Ignoring failure for a closed order")
		return order, nil // No second notification
	}
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": order.UserID, "order_id": orderID, "reason": reason}).Info("Payment failed")
	s.notifier.Notify(ctx, order.UserID, notify.PaymentFailed{OrderID: orderID, Amount: order.Amount, Reason: reason})
	return order, nil
}

// afterMovement sends the lead events plus any large transaction alert. Low
// balance goes through CheckLowBalance so repeated warnings are suppressed.
func (s *Service) afterMovement(ctx context.Context, wallet *domain.Wallet, txn *domain.WalletTransaction, lead ...notify.Event) {
	events := lead
	for _, ev := range notify.Evaluate(wallet.Balance, txn) {
		if ev.Kind() != notify.KindLowBalance {
			events = append(events, ev)
		}
	}
	s.notifier.Notify(ctx, wallet.UserID, events...)
	s.notifier.CheckLowBalance(ctx, wallet)
}

// Package notify emits best-effort wallet notifications. Nothing here may fail
// the ledger operation that triggered it: errors are logged and dropped.
package notify

import (
	"context"                 // Cancellation and deadlines
	"encoding/json"           // JSON encoding/decoding
	"errors"                  // Error matching
	"spanner/internal/domain" // Domain models
	"sync"                    // WaitGroup
	"time"                    // Timestamps

	"github.com/shopspring/decimal" // Money
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/datatypes"             // JSON columns
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Order clauses
)

// ErrNotificationNotFound is returned by MarkRead for an unknown id.
var ErrNotificationNotFound = errors.New("notification not found")

// Message is the event published to the message bus.
type Message struct {
	ID        uint            `json:"id"`         // Stored notification id
	UserID    uint            `json:"user_id"`    // Recipient
	Type      Kind            `json:"type"`       // Event kind
	Title     string          `json:"title"`      // Short title
	Message   string          `json:"message"`    // Body text
	Data      json.RawMessage `json:"data"`       // Typed event payload
	CreatedAt time.Time       `json:"created_at"` // Storage time
}

// Publisher forwards notifications to other services.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// TransactionSource reads ledger rows for summaries.
type TransactionSource interface {
	TransactionsBetween(ctx context.Context, userID uint, from, to time.Time) ([]domain.WalletTransaction, error)
}

// Notifier stores notifications and publishes them when a Publisher is set.
// With Async set, delivery runs on its own goroutine and outlives the request.
type Notifier struct {
	DB        *gorm.DB          // Notification storage
	Ledger    TransactionSource // Source for summaries
	Publisher Publisher         // Optional fan-out, nil to store only
	Async     bool              // Deliver in the background

	wg sync.WaitGroup
}

// New returns a synchronous notifier. publisher may be nil.
func New(db *gorm.DB, ledger TransactionSource, publisher Publisher) *Notifier {
	return &Notifier{DB: db, Ledger: ledger, Publisher: publisher}
}

// Notify delivers events to the user.
func (n *Notifier) Notify(ctx context.Context, userID uint, events ...Event) {
	if len(events) == 0 {
		return
	}
	if !n.Async {
		n.deliver(ctx, userID, events)
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(context.WithoutCancel(ctx), userID, events) // Outlives the request
	}()
}

// Wait blocks until in-flight asynchronous deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, userID uint, events []Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "panic": r}).Error("Notification delivery panicked")
		}
	}()
	for _, ev := range events {
		log := logrus.WithFields(logrus.Fields{"user_id": userID, "type": ev.Kind()})
		data, err := json.Marshal(ev)
		if err != nil {
			log.WithError(err).Warn("Failed to encode notification")
			continue
		}
		record := domain.Notification{
			UserID:  userID,
			Type:    string(ev.Kind()),
			Title:   ev.Title(),
			Message: ev.Message(),
			Data:    datatypes.JSON(data),
		}
		if err := n.DB.WithContext(ctx).Create(&record).Error; err != nil {
			log.WithError(err).Warn("Failed to store notification")
		}
		if n.Publisher == nil {
			continue // Store only
		}
		msg := Message{
			ID:        record.ID,
			UserID:    userID,
			Type:      ev.Kind(),
			Title:     record.Title,
			Message:   record.Message,
			Data:      data,
			CreatedAt: record.CreatedAt,
		}
		if err := n.Publisher.Publish(ctx, msg); err != nil {
			log.WithError(err).Warn("Failed to publish notification")
		}
	}
}

// Evaluate returns the balance alerts a ledger movement triggers.
func Evaluate(balance decimal.Decimal, txn *domain.WalletTransaction) []Event {
	var events []Event
	if txn != nil && txn.Amount.GreaterThan(LargeTransactionThreshold) {
		events = append(events, LargeTransaction{
			TransactionID: txn.ID,
			Type:          txn.Type,
			Category:      txn.Category,
			Amount:        txn.Amount,
		})
	}
	if balance.LessThan(LowBalanceThreshold) {
		events = append(events, LowBalance{Balance: balance, Threshold: LowBalanceThreshold})
	}
	return events
}

// CheckLowBalance warns about a low balance at most once per day while the
// previous warning is unread. It reports whether a warning was sent.
func (n *Notifier) CheckLowBalance(ctx context.Context, wallet *domain.Wallet) bool {
	if !wallet.Balance.LessThan(LowBalanceThreshold) {
		return false
	}
	var recent int64
	err := n.DB.WithContext(ctx).Model(&domain.Notification{}).
		Where(map[string]any{"user_id": wallet.UserID, "type": string(KindLowBalance), "read": false}).
		Where("created_at >= ?", time.Now().Add(-24*time.Hour)).
		Count(&recent).Error
	if err != nil {
		logrus.WithError(err).WithField("user_id", wallet.UserID).Warn("Failed to look up recent low balance notifications")
		return false
	}
	if recent > 0 {
		return false // Unread warning already pending
	}
	n.Notify(ctx, wallet.UserID, LowBalance{Balance: wallet.Balance, Threshold: LowBalanceThreshold})
	return true
}

// Summarize aggregates ledger rows into a weekly summary. Failed withdrawals
// and their reversal credits cancel out and are left out.
func Summarize(txs []domain.WalletTransaction, from, to time.Time) WeeklySummary {
	s := WeeklySummary{From: from, To: to, Credits: decimal.Zero, Debits: decimal.Zero}
	for _, tx := range txs {
		if tx.Status == domain.TxStatusFailed || tx.Category == domain.CategoryWithdrawalReversal {
			continue
		}
		s.Transactions++
		if tx.Type == domain.TxTypeDebit {
			s.Debits = s.Debits.Add(tx.Amount)
		} else {
			s.Credits = s.Credits.Add(tx.Amount)
		}
	}
	s.Net = s.Credits.Sub(s.Debits)
	return s
}

// WeeklySummary aggregates the seven days before now, notifies the user and returns the summary.
func (n *Notifier) WeeklySummary(ctx context.Context, userID uint, now time.Time) (*WeeklySummary, error) {
	from := now.Add(-7 * 24 * time.Hour)
	txs, err := n.Ledger.TransactionsBetween(ctx, userID, from, now)
	if err != nil {
		return nil, err
	}
	summary := Summarize(txs, from, now)
	n.Notify(ctx, userID, summary)
	return &summary, nil
}

// List returns the user's notifications, unread first then newest first.
func (n *Notifier) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := n.DB.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where(map[string]any{"read": false})
	}
	var out []domain.Notification
	err := query.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "read"}},
		{Column: clause.Column{Name: "created_at"}, Desc: true},
		{Column: clause.Column{Name: "id"}, Desc: true},
	}}).Limit(limit).Find(&out).Error
	return out, err
}

// MarkRead marks one of the user's notifications as read.
func (n *Notifier) MarkRead(ctx context.Context, userID, id uint) error {
	res := n.DB.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

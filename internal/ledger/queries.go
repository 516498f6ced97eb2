package ledger

import (
	"context"                 // Cancellation and deadlines
	"spanner/internal/domain" // Domain models
	"time"                    // Timestamps

	"gorm.io/gorm" // GORM ORM library
)

// Page bounds used by the paginated listings
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a slice of a listing. Out-of-range values fall back to defaults.
type Page struct {
	Page     int // 1-based page number
	PageSize int // Rows per page, capped at MaxPageSize
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

// TotalPages returns the number of pages needed for total rows.
func (p Page) TotalPages(total int64) int {
	p = p.normalize()
	return (int(total) + p.PageSize - 1) / p.PageSize
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	p = p.normalize()
	return q.Offset((p.Page - 1) * p.PageSize).Limit(p.PageSize)
}

// TxFilter narrows a ledger listing. Zero values mean no filter.
type TxFilter struct {
	UserID   uint      // Owner
	Type     string    // credit or debit
	Category string    // wallet_topup, withdrawal, ...
	Status   string    // completed, pending or failed
	From     time.Time // Inclusive lower bound on created_at
	To       time.Time // Inclusive upper bound on created_at
	Page     // Requested page
}

// OrderFilter narrows a payment order listing.
type OrderFilter struct {
	UserID uint   // Owner
	Status string // created, paid or failed
	Page   // Requested page
}

// Transactions returns one page of ledger rows, newest first, and the total match count.
func (s *Store) Transactions(ctx context.Context, f TxFilter) ([]domain.WalletTransaction, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.WalletTransaction{})
	if f.UserID != 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		query = query.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		query = query.Where("created_at <= ?", f.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil { // Total before pagination
		return nil, 0, err
	}
	var txs []domain.WalletTransaction
	if err := f.Page.apply(query.Order("created_at desc, id desc")).Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// RecentTransactions returns the user's latest limit rows, newest first.
func (s *Store) RecentTransactions(ctx context.Context, userID uint, limit int) ([]domain.WalletTransaction, error) {
	var txs []domain.WalletTransaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// TransactionsBetween returns the user's rows created in [from, to], oldest
// first. A zero from or to leaves that side open.
func (s *Store) TransactionsBetween(ctx context.Context, userID uint, from, to time.Time) ([]domain.WalletTransaction, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}
	var txs []domain.WalletTransaction
	err := query.Order("created_at asc, id asc").Find(&txs).Error
	return txs, err
}

// Orders returns one page of payment orders, newest first.
func (s *Store) Orders(ctx context.Context, f OrderFilter) ([]domain.PaymentOrder, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.PaymentOrder{})
	if f.UserID != 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []domain.PaymentOrder
	if err := f.Page.apply(query.Order("created_at desc, id desc")).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

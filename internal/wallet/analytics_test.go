package wallet

import (
	"spanner/internal/domain"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	d := decimal.NewFromInt
	sunday := time.Date(2025, time.March, 30, 10, 0, 0, 0, time.UTC)
	monday := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	txs := []domain.WalletTransaction{
		{Type: domain.TxTypeCredit, Category: domain.CategoryWalletTopup, Amount: d(1000), Status: domain.TxStatusCompleted, CreatedAt: sunday},
		{Type: domain.TxTypeDebit, Category: domain.CategoryWithdrawal, Amount: d(300), Status: domain.TxStatusPending, CreatedAt: monday},
		{Type: domain.TxTypeCredit, Category: domain.CategoryJobEarning, Amount: d(450), Status: domain.TxStatusCompleted, CreatedAt: monday},
		{Type: domain.TxTypeDebit, Category: domain.CategoryWithdrawal, Amount: d(999), Status: domain.TxStatusFailed, CreatedAt: monday},
		{Type: domain.TxTypeCredit, Category: domain.CategoryWithdrawalReversal, Amount: d(999), Status: domain.TxStatusCompleted, CreatedAt: monday},
	}

	a := Summarize(txs)
	assert.Equal(t, 3, a.Transactions)
	assert.True(t, a.TotalCredits.Equal(d(1450)))
	assert.True(t, a.TotalDebits.Equal(d(300)))
	assert.True(t, a.Net.Equal(d(1150)))

	require.Len(t, a.ByCategory, 3)
	assert.Equal(t, domain.CategoryJobEarning, a.ByCategory[0].Category)
	assert.Equal(t, domain.CategoryWalletTopup, a.ByCategory[1].Category)
	assert.Equal(t, domain.CategoryWithdrawal, a.ByCategory[2].Category)
	assert.Equal(t, 1, a.ByCategory[2].Count)
	assert.True(t, a.ByCategory[2].Amount.Equal(d(300)))

	require.Len(t, a.ByMonth, 2)
	assert.Equal(t, "2025-03", a.ByMonth[0].Month)
	assert.True(t, a.ByMonth[0].Credits.Equal(d(1000)))
	assert.Equal(t, "2025-04", a.ByMonth[1].Month)
	assert.True(t, a.ByMonth[1].Credits.Equal(d(450)))
	assert.True(t, a.ByMonth[1].Debits.Equal(d(300)))

	require.Len(t, a.ByWeekday, 7)
	assert.Equal(t, "Sunday", a.ByWeekday[0].Day)
	assert.Equal(t, 1, a.ByWeekday[0].Count)
	assert.Equal(t, "Monday", a.ByWeekday[1].Day)
	assert.Equal(t, 2, a.ByWeekday[1].Count)
	assert.True(t, a.ByWeekday[1].Amount.Equal(d(750)))
	assert.Zero(t, a.ByWeekday[6].Count)
}

func TestSummarizeEmpty(t *testing.T) {
	a := Summarize(nil)
	assert.Zero(t, a.Transactions)
	assert.True(t, a.Net.IsZero())
	assert.Empty(t, a.ByCategory)
	assert.Len(t, a.ByWeekday, 7)
}

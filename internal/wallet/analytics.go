package wallet

import (
	"sort"                    // Stable ordering
	"spanner/internal/domain" // Domain models
	"time"                    // Timestamps

	"github.com/shopspring/decimal" // Money
)

// CategoryTotal is the activity of one transaction category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthTotal is the money in and out during one calendar month (YYYY-MM).
type MonthTotal struct {
	Month   string          `json:"month"`
	Credits decimal.Decimal `json:"credits"`
	Debits  decimal.Decimal `json:"debits"`
}

// WeekdayTotal is the activity on one day of the week.
type WeekdayTotal struct {
	Day    string          `json:"day"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Analytics is the dashboard rollup of a wallet's ledger.
type Analytics struct {
	TotalCredits decimal.Decimal `json:"totalCredits"` // Money in
	TotalDebits  decimal.Decimal `json:"totalDebits"`  // Money out
	Net          decimal.Decimal `json:"net"`          // Credits minus debits
	Transactions int             `json:"transactions"` // Rows counted
	ByCategory   []CategoryTotal `json:"byCategory"`   // Sorted by category
	ByMonth      []MonthTotal    `json:"byMonth"`      // Sorted by month
	ByWeekday    []WeekdayTotal  `json:"byWeekday"`    // Sunday first
}

// Summarize rolls up completed and pending rows. Failed withdrawals and their
// reversals cancel out, so both are skipped.
func Summarize(txs []domain.WalletTransaction) *Analytics {
	a := &Analytics{TotalCredits: decimal.Zero, TotalDebits: decimal.Zero}
	categories := map[string]*CategoryTotal{}
	months := map[string]*MonthTotal{}
	a.ByWeekday = make([]WeekdayTotal, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		a.ByWeekday[d] = WeekdayTotal{Day: d.String(), Amount: decimal.Zero}
	}

	for _, tx := range txs {
		if tx.Status == domain.TxStatusFailed || tx.Category == domain.CategoryWithdrawalReversal {
			continue
		}
		a.Transactions++

		month := tx.CreatedAt.Format("2006-01")
		m, ok := months[month]
		if !ok {
			m = &MonthTotal{Month: month, Credits: decimal.Zero, Debits: decimal.Zero}
			months[month] = m
		}
		if tx.Type == domain.TxTypeDebit {
			a.TotalDebits = a.TotalDebits.Add(tx.Amount)
			m.Debits = m.Debits.Add(tx.Amount)
		} else {
			a.TotalCredits = a.TotalCredits.Add(tx.Amount)
			m.Credits = m.Credits.Add(tx.Amount)
		}

		c, ok := categories[tx.Category]
		if !ok {
			c = &CategoryTotal{Category: tx.Category, Amount: decimal.Zero}
			categories[tx.Category] = c
		}
		c.Count++
		c.Amount = c.Amount.Add(tx.Amount)

		day := &a.ByWeekday[tx.CreatedAt.Weekday()]
		day.Count++
		day.Amount = day.Amount.Add(tx.Amount)
	}
	a.Net = a.TotalCredits.Sub(a.TotalDebits)

	a.ByCategory = make([]CategoryTotal, 0, len(categories))
	for _, c := range categories {
		a.ByCategory = append(a.ByCategory, *c)
	}
	sort.Slice(a.ByCategory, func(i, j int) bool { return a.ByCategory[i].Category < a.ByCategory[j].Category })

	a.ByMonth = make([]MonthTotal, 0, len(months))
	for _, m := range months {
		a.ByMonth = append(a.ByMonth, *m)
	}
	sort.Slice(a.ByMonth, func(i, j int) bool { return a.ByMonth[i].Month < a.ByMonth[j].Month })
	return a
}

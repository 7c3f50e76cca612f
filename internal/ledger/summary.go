package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minesupport/bookkeeper/internal/model"
)

// MonthTotals holds revenue and expense for one calendar month.
type MonthTotals struct {
	Month   time.Month      `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryTotal is the expense booked against one account category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthlySummary is the dashboard view of a year.
type MonthlySummary struct {
	Year              int             `json:"year"`
	Months            []MonthTotals   `json:"months"`
	ExpenseByCategory []CategoryTotal `json:"expense_by_category"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalExpense      decimal.Decimal `json:"total_expense"`
}

// ComputeMonthlySummary buckets posted revenue and expense entries of the
// calendar year by month, and expense entries by account category.
func ComputeMonthlySummary(entries []Entry, year int) MonthlySummary {
	s := MonthlySummary{
		Year:         year,
		Months:       make([]MonthTotals, 12),
		TotalRevenue: decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for i := range s.Months {
		s.Months[i] = MonthTotals{Month: time.Month(i + 1), Revenue: decimal.Zero, Expense: decimal.Zero}
	}

	period := Year(year)
	byCategory := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.Status != model.StatusPosted || !period.Contains(e.Date) {
			continue
		}
		m := &s.Months[e.Date.Month()-1]
		amount := SignedBalance(e.Account.Type, e.Debit, e.Credit)
		switch e.Account.Type {
		case model.AccountTypeRevenue:
			m.Revenue = m.Revenue.Add(amount)
			s.TotalRevenue = s.TotalRevenue.Add(amount)
		case model.AccountTypeExpense:
			m.Expense = m.Expense.Add(amount)
			s.TotalExpense = s.TotalExpense.Add(amount)
			cat := e.Account.Category
			if cat == "" {
				cat = "UNCATEGORIZED"
			}
			byCategory[cat] = byCategory[cat].Add(amount)
		}
	}

	s.ExpenseByCategory = make([]CategoryTotal, 0, len(byCategory))
	for cat, amount := range byCategory {
		s.ExpenseByCategory = append(s.ExpenseByCategory, CategoryTotal{Category: cat, Amount: amount})
	}
	slices.SortFunc(s.ExpenseByCategory, func(a, b CategoryTotal) int {
		return strings.Compare(a.Category, b.Category)
	})
	return s
}

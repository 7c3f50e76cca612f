package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/minesupport/bookkeeper/internal/model"
)

// Tolerance returns the bound below which an absolute difference counts as
// balanced, both when posting a transaction and when checking a balance
// sheet or trial balance: 0.01.
func Tolerance() decimal.Decimal {
	return decimal.New(1, -2)
}

// Balanced reports whether |a - b| < Tolerance().
func Balanced(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance())
}

// IncomeStatement is the profit and loss report for a period.
type IncomeStatement struct {
	RevenueLines []model.AccountBalance `json:"revenue_lines"`
	ExpenseLines []model.AccountBalance `json:"expense_lines"`
	TotalRevenue decimal.Decimal        `json:"total_revenue"`
	TotalExpense decimal.Decimal        `json:"total_expense"`
	NetProfit    decimal.Decimal        `json:"net_profit"` // negative is a loss
}

// ComputeIncomeStatement derives revenue, expense and net profit from balances.
func ComputeIncomeStatement(balances []model.AccountBalance) IncomeStatement {
	revenue := ofType(balances, model.AccountTypeRevenue)
	expense := ofType(balances, model.AccountTypeExpense)
	totalRevenue := sum(revenue)
	totalExpense := sum(expense)
	return IncomeStatement{
		RevenueLines: revenue,
		ExpenseLines: expense,
		TotalRevenue: totalRevenue,
		TotalExpense: totalExpense,
		NetProfit:    totalRevenue.Sub(totalExpense),
	}
}

// BalanceSheet is the statement of financial position for a period.
//
// CurrentEarnings is the period's net profit. It is reported beside the
// equity accounts rather than as one of them, and TotalEquity includes it
// exactly once.
type BalanceSheet struct {
	Assets           []model.AccountBalance `json:"assets"`
	Liabilities      []model.AccountBalance `json:"liabilities"`
	Equity           []model.AccountBalance `json:"equity"`
	CurrentEarnings  decimal.Decimal        `json:"current_earnings"`
	TotalAssets      decimal.Decimal        `json:"total_assets"`
	TotalLiabilities decimal.Decimal        `json:"total_liabilities"`
	TotalEquity      decimal.Decimal        `json:"total_equity"`
	Difference       decimal.Decimal        `json:"difference"` // assets - (liabilities + equity)
	IsBalanced       bool                   `json:"is_balanced"`
}

// ComputeBalanceSheet derives the balance sheet from the balances of a single
// period. Revenue and expense balances in the same slice provide the current
// earnings. An unbalanced result is returned as data, never as an error.
func ComputeBalanceSheet(balances []model.AccountBalance) BalanceSheet {
	assets := ofType(balances, model.AccountTypeAsset)
	liabilities := ofType(balances, model.AccountTypeLiability)
	equity := ofType(balances, model.AccountTypeEquity)
	earnings := ComputeIncomeStatement(balances).NetProfit

	totalAssets := sum(assets)
	totalLiabilities := sum(liabilities)
	totalEquity := sum(equity).Add(earnings)
	diff := totalAssets.Sub(totalLiabilities.Add(totalEquity))

	return BalanceSheet{
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		CurrentEarnings:  earnings,
		TotalAssets:      totalAssets,
		TotalLiabilities: totalLiabilities,
		TotalEquity:      totalEquity,
		Difference:       diff,
		IsBalanced:       Balanced(totalAssets, totalLiabilities.Add(totalEquity)),
	}
}

// TrialBalanceRow places one account balance in its debit or credit column.
type TrialBalanceRow struct {
	model.AccountBalance
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// TrialBalance lists every account balance with column totals.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	IsBalanced  bool              `json:"is_balanced"`
}

// ComputeTrialBalance splits balances into debit and credit columns. A
// positive balance sits on the account's normal side; a negative one on the
// opposite side.
func ComputeTrialBalance(balances []model.AccountBalance) TrialBalance {
	tb := TrialBalance{
		Rows:        make([]TrialBalanceRow, 0, len(balances)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, b := range balances {
		row := TrialBalanceRow{AccountBalance: b, Debit: decimal.Zero, Credit: decimal.Zero}
		onDebit := b.Type.NormalSide() == model.DebitNormal
		if b.Balance.IsNegative() {
			onDebit = !onDebit
		}
		if onDebit {
			row.Debit = b.Balance.Abs()
		} else {
			row.Credit = b.Balance.Abs()
		}
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}
	tb.IsBalanced = Balanced(tb.TotalDebit, tb.TotalCredit)
	return tb
}

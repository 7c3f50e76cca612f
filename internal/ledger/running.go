package ledger

import (
	"iter"

	"github.com/shopspring/decimal"

	"github.com/minesupport/bookkeeper/internal/model"
)

// RunningBalance yields, for each line in order, its index and the
// cumulative balance of an account of type t after applying it. Every
// iteration starts again from zero; no opening balance is carried in from
// earlier periods.
func RunningBalance(lines []model.JournalLine, t model.AccountType) iter.Seq2[int, decimal.Decimal] {
	side := t.NormalSide()
	return func(yield func(int, decimal.Decimal) bool) {
		balance := decimal.Zero
		for i, l := range lines {
			if side == model.CreditNormal {
				balance = balance.Add(l.Credit.Sub(l.Debit))
			} else {
				balance = balance.Add(l.Debit.Sub(l.Credit))
			}
			if !yield(i, balance) {
				return
			}
		}
	}
}

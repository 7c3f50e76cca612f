package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/minesupport/bookkeeper/internal/model"
)

// Imbalance returns the sum of debits minus the sum of credits.
func Imbalance(lines []model.JournalLine) decimal.Decimal {
	diff := decimal.Zero
	for _, l := range lines {
		diff = diff.Add(l.Debit).Sub(l.Credit)
	}
	return diff
}

// ValidateTransactionBalance reports whether debits equal credits within
// Tolerance.
func ValidateTransactionBalance(lines []model.JournalLine) bool {
	return Imbalance(lines).Abs().LessThan(Tolerance())
}

// CheckPostable returns a *ValidationError if txn may not move to POSTED.
func CheckPostable(txn model.Transaction) error {
	if !ValidateTransactionBalance(txn.Lines) {
		return &ValidationError{TransactionID: txn.ID, Imbalance: Imbalance(txn.Lines)}
	}
	return nil
}

package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a transaction.
// DRAFT is initial; POSTED is terminal.
type TransactionStatus string

const (
	StatusDraft  TransactionStatus = "DRAFT"
	StatusPosted TransactionStatus = "POSTED"
)

// ParseStatus converts s into a TransactionStatus, rejecting unknown values.
func ParseStatus(s string) (TransactionStatus, error) {
	switch st := TransactionStatus(s); st {
	case StatusDraft, StatusPosted:
		return st, nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// JournalLine is one side of a double-entry transaction.
type JournalLine struct {
	AccountID   string          `json:"account_id" validate:"required"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`  // zero if credit side
	Credit      decimal.Decimal `json:"credit"` // zero if debit side
}

// Transaction is a dated, described group of journal lines.
type Transaction struct {
	ID          string            `json:"id"` // "YYYY-MM-NNN"
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	Status      TransactionStatus `json:"status"`
	Lines       []JournalLine     `json:"lines"`
}

// Totals returns the sum of debits and credits across the lines.
func (t Transaction) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range t.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// AccountBalance is the signed balance of one account over a period.
// It is derived on every query and never stored.
type AccountBalance struct {
	AccountID string          `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Category  string          `json:"category,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
}

package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError is returned when a transaction cannot be posted because
// its debits and credits differ by at least Tolerance.
type ValidationError struct {
	TransactionID string
	Imbalance     decimal.Decimal // debits minus credits
}

func (e *ValidationError) Error() string {
	side := "debits exceed credits"
	if e.Imbalance.IsNegative() {
		side = "credits exceed debits"
	}
	id := e.TransactionID
	if id == "" {
		id = "(new)"
	}
	return fmt.Sprintf("transaction %s is unbalanced: %s by %s", id, side, e.Imbalance.Abs().StringFixed(2))
}

// NotFoundError reports a reference to an account or transaction that does
// not exist.
type NotFoundError struct {
	Kind string // "account" or "transaction"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// AccountNotFound returns a NotFoundError for an account id.
func AccountNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "account", ID: id}
}

// TransactionNotFound returns a NotFoundError for a transaction id.
func TransactionNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "transaction", ID: id}
}

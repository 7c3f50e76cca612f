// Package ledger computes balances and financial statements from posted
// journal lines. Everything here is a pure function of its arguments.
package ledger

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minesupport/bookkeeper/internal/model"
)

// Entry is a journal line joined with its parent transaction and account.
type Entry struct {
	TransactionID string
	Date          time.Time
	Status        model.TransactionStatus
	Description   string
	Account       model.Account
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// AccountLookup resolves account ids.
type AccountLookup interface {
	Get(id string) (model.Account, error)
}

// Join flattens transactions into entries, resolving each line's account.
// An unknown account fails the whole join.
func Join(txns []model.Transaction, accounts AccountLookup) ([]Entry, error) {
	var entries []Entry
	for _, txn := range txns {
		for _, line := range txn.Lines {
			acct, err := accounts.Get(line.AccountID)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: %w", txn.ID, err)
			}
			desc := line.Description
			if desc == "" {
				desc = txn.Description
			}
			entries = append(entries, Entry{
				TransactionID: txn.ID,
				Date:          txn.Date,
				Status:        txn.Status,
				Description:   desc,
				Account:       acct,
				Debit:         line.Debit,
				Credit:        line.Credit,
			})
		}
	}
	return entries, nil
}

// SignedBalance applies the normal-balance convention of t to raw totals.
func SignedBalance(t model.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	switch t.NormalSide() {
	case model.DebitNormal:
		return debit.Sub(credit)
	case model.CreditNormal:
		return credit.Sub(debit)
	}
	panic("unreachable")
}

// ComputeAccountBalances sums the posted entries dated within period into
// one balance per account. Drafts are ignored. Accounts without a qualifying
// entry are omitted. The result is ordered by account code.
func ComputeAccountBalances(entries []Entry, period Period) []model.AccountBalance {
	type totals struct {
		acct   model.Account
		debit  decimal.Decimal
		credit decimal.Decimal
	}

	byAccount := make(map[string]*totals)
	for _, e := range entries {
		if e.Status != model.StatusPosted || !period.Contains(e.Date) {
			continue
		}
		t, ok := byAccount[e.Account.ID]
		if !ok {
			t = &totals{acct: e.Account, debit: decimal.Zero, credit: decimal.Zero}
			byAccount[e.Account.ID] = t
		}
		t.debit = t.debit.Add(e.Debit)
		t.credit = t.credit.Add(e.Credit)
	}

	balances := make([]model.AccountBalance, 0, len(byAccount))
	for _, t := range byAccount {
		balances = append(balances, model.AccountBalance{
			AccountID: t.acct.ID,
			Code:      t.acct.Code,
			Name:      t.acct.Name,
			Type:      t.acct.Type,
			Category:  t.acct.Category,
			Balance:   SignedBalance(t.acct.Type, t.debit, t.credit),
		})
	}
	SortBalances(balances)
	return balances
}

// SortBalances orders balances by account code, then id.
func SortBalances(balances []model.AccountBalance) {
	slices.SortFunc(balances, func(a, b model.AccountBalance) int {
		if c := CompareCodes(a.Code, b.Code); c != 0 {
			return c
		}
		return strings.Compare(a.AccountID, b.AccountID)
	})
}

// CompareCodes orders account codes numerically when both are digit
// strings, so "900" sorts before "1000"; otherwise lexicographically.
func CompareCodes(a, b string) int {
	if isDigits(a) && isDigits(b) {
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return len(a) - len(b)
		}
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sum(balances []model.AccountBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Balance)
	}
	return total
}

func ofType(balances []model.AccountBalance, t model.AccountType) []model.AccountBalance {
	out := []model.AccountBalance{}
	for _, b := range balances {
		if b.Type == t {
			out = append(out, b)
		}
	}
	return out
}
